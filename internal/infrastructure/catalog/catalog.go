// Package catalog serves the partner offer catalog from memory, optionally loaded
// from a TOML file.
package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/campuscoins/coinledger/internal/domain"
)

type offerFile struct {
	Offers []offerRecord `toml:"offer"`
}

type offerRecord struct {
	ID          string `toml:"id"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	CoinCost    int64  `toml:"coin_cost"`
	PartnerName string `toml:"partner_name"`
	Category    string `toml:"category"`
	Active      *bool  `toml:"active"`
}

// Catalog is an immutable set of offers.
type Catalog struct {
	offers map[string]*domain.Offer
}

// New builds a catalog from offers. IDs must be unique, costs positive, and
// titles short enough to fit a redemption description.
func New(offers []*domain.Offer) (*Catalog, error) {
	c := &Catalog{offers: make(map[string]*domain.Offer, len(offers))}

	for _, o := range offers {
		if o.ID == "" {
			return nil, fmt.Errorf("%w: offer without id", domain.ErrValidation)
		}
		if len(o.ID) > domain.MaxReferenceIDLength {
			return nil, fmt.Errorf("%w: offer id exceeds %d characters", domain.ErrValidation, domain.MaxReferenceIDLength)
		}
		if err := domain.ValidateOfferTitle(o.Title); err != nil {
			return nil, fmt.Errorf("offer %s: %w", o.ID, err)
		}
		if o.CoinCost <= 0 {
			return nil, fmt.Errorf("%w: offer %s must cost at least one coin", domain.ErrValidation, o.ID)
		}
		if _, dup := c.offers[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate offer id %s", domain.ErrValidation, o.ID)
		}

		copied := *o
		c.offers[o.ID] = &copied
	}

	return c, nil
}

// Default returns the built-in campus offers.
func Default() *Catalog {
	c, _ := New(DefaultOffers())
	return c
}

// DefaultOffers lists the offers available when no catalog file is configured.
func DefaultOffers() []*domain.Offer {
	return []*domain.Offer{
		{ID: "1", Title: "Coffee Shop Discount", Description: "20% off at Campus Coffee", CoinCost: 50, PartnerName: "Campus Coffee", Category: "food_beverage", Active: true},
		{ID: "2", Title: "Bookstore Voucher", Description: "$10 off textbooks", CoinCost: 100, PartnerName: "University Bookstore", Category: "education", Active: true},
		{ID: "3", Title: "Movie Ticket", Description: "Free movie ticket", CoinCost: 200, PartnerName: "Cinema Complex", Category: "entertainment", Active: true},
	}
}

// Load reads a catalog from a TOML file with [[offer]] tables.
func Load(path string) (*Catalog, error) {
	var f offerFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("read offer catalog %s: %w", path, err)
	}

	return fromFile(f)
}

// Decode reads a catalog from r.
func Decode(r io.Reader) (*Catalog, error) {
	var f offerFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode offer catalog: %w", err)
	}

	return fromFile(f)
}

func fromFile(f offerFile) (*Catalog, error) {
	offers := make([]*domain.Offer, 0, len(f.Offers))
	for _, rec := range f.Offers {
		active := true
		if rec.Active != nil {
			active = *rec.Active
		}

		offers = append(offers, &domain.Offer{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			CoinCost:    rec.CoinCost,
			PartnerName: rec.PartnerName,
			Category:    rec.Category,
			Active:      active,
		})
	}

	return New(offers)
}

// Get returns a copy of the offer with id.
func (c *Catalog) Get(_ context.Context, id string) (*domain.Offer, error) {
	o, ok := c.offers[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}

	copied := *o
	return &copied, nil
}

// List returns all offers ordered by id, numerically when ids are numbers.
func (c *Catalog) List(_ context.Context) ([]*domain.Offer, error) {
	out := make([]*domain.Offer, 0, len(c.offers))
	for _, o := range c.offers {
		copied := *o
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i].ID)
		b, errB := strconv.Atoi(out[j].ID)
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}
