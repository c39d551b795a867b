package domain

// Offer is a catalog item that can be bought with coins.
type Offer struct {
	ID          string
	Title       string
	Description string
	CoinCost    int64
	PartnerName string
	Category    string
	Active      bool
}

// Redemption is the outcome of spending coins on an offer.
type Redemption struct {
	Entry     *LedgerEntry
	Code      string
	OfferID   string
	Quantity  int
	UnitCost  int64
	TotalCost int64
}
