// Package idgen produces identifiers for outbox events, transfers and redemptions.
package idgen

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates lexically sortable ULID ids.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// RedemptionCodePrefix starts every redemption code.
const RedemptionCodePrefix = "RDM-"

// RedemptionCodeGenerator produces opaque codes shown to members at the partner counter.
type RedemptionCodeGenerator struct{}

// NewRedemptionCodeGenerator creates a new RedemptionCodeGenerator.
func NewRedemptionCodeGenerator() *RedemptionCodeGenerator {
	return &RedemptionCodeGenerator{}
}

// Generate returns RDM- followed by 12 upper-case hex digits of a random UUID.
func (g *RedemptionCodeGenerator) Generate() string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")

	return RedemptionCodePrefix + strings.ToUpper(hex[:12])
}
