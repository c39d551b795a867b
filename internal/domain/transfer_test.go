package domain

import "testing"

func TestTransferPair_Net(t *testing.T) {
	pair := &TransferPair{
		Out: &LedgerEntry{Amount: -50, Kind: KindTransferOut},
		In:  &LedgerEntry{Amount: 50, Kind: KindTransferIn},
	}

	if pair.Net() != 0 {
		t.Errorf("expected net 0, got %d", pair.Net())
	}
}
