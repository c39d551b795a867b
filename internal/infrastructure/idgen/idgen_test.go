package idgen

import (
	"regexp"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator(t *testing.T) {
	g := NewULIDGenerator()

	a, b := g.Generate(), g.Generate()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}

	if _, err := ulid.Parse(a); err != nil {
		t.Fatalf("expected a valid ULID, got %q: %v", a, err)
	}
}

func TestRedemptionCodeGenerator(t *testing.T) {
	g := NewRedemptionCodeGenerator()
	pattern := regexp.MustCompile(`^RDM-[0-9A-F]{12}$`)

	seen := make(map[string]bool)
	for iter := 0; iter < 100; iter++ {
		code := g.Generate()
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code format %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
