package domain

import "time"

// TransferPair is the linked debit and credit written by one transfer.
type TransferPair struct {
	ID          string
	SenderID    string
	RecipientID string
	Amount      int64
	Out         *LedgerEntry
	In          *LedgerEntry
	CreatedAt   time.Time
}

// Net returns the sum of both legs, which is always zero for a valid pair.
func (p *TransferPair) Net() int64 {
	return p.Out.Amount + p.In.Amount
}
