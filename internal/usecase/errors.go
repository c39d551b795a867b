package usecase

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuscoins/coinledger/internal/domain"
)

// storageError keeps taxonomy errors intact and hides everything else behind
// domain.ErrStorageUnavailable. The underlying error is logged, not returned.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}

	if domain.IsKnown(err) {
		return err
	}

	log.Error().Err(err).Str("operation", op).Msg("storage operation failed")

	return fmt.Errorf("%s: %w", op, domain.ErrStorageUnavailable)
}

type nopMetrics struct{}

func (nopMetrics) CoinsEarned(domain.EntryKind, int64) {}
func (nopMetrics) CoinsSpent(domain.EntryKind, int64) {}
func (nopMetrics) TransferCompleted(int64) {}
func (nopMetrics) RedemptionCompleted(string, int64) {}
func (nopMetrics) BonusClaimed(int) {}
func (nopMetrics) OperationFailed(string, error) {}
func (nopMetrics) ObserveOperation(string, time.Duration) {}
