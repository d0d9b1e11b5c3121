// Package catalog holds the immutable product descriptors the exchange
// trades: tick size, lot size, position limit, fine rate, fee schedule and
// conversion ratios. Adapted from the teacher's engine.AssetType/Product
// split (internal/engine/types.go), collapsed into one descriptor per the
// specification's flatter Product model.
package catalog

import (
	"fmt"

	"github.com/QFinUWA/QFinProject2/internal/common"
)

// Product is an immutable descriptor for one tradeable ticker.
type Product struct {
	Ticker   string
	MPV      float64 // minimum price variation (tick size)
	LotSize  int64
	PosLimit *int64 // nil means unbounded
	MinPrice float64
	MaxPrice *float64 // nil means unbounded

	Fine float64 // per-unit overrun penalty per tick

	TradeFee *float64
	FeeType  common.FeeType

	Conversions   map[string]int64 // component ticker -> multiplicity
	ConversionFee *float64
}

// Option customises Product construction.
type Option func(*Product)

func WithLotSize(lot int64) Option { return func(p *Product) { p.LotSize = lot } }
func WithPosLimit(limit int64) Option { return func(p *Product) { p.PosLimit = &limit } }
func WithMinPrice(min float64) Option { return func(p *Product) { p.MinPrice = min } }
func WithMaxPrice(max float64) Option { return func(p *Product) { p.MaxPrice = &max } }
func WithFine(fine float64) Option { return func(p *Product) { p.Fine = fine } }
func WithConversions(fee float64, ratios map[string]int64) Option {
	return func(p *Product) {
		p.Conversions = ratios
		p.ConversionFee = &fee
	}
}

// WithTradeFee sets a trade fee; feeType must be SetFee or PercentageFee,
// enforced by New (construction fails with ErrInvalidConfig otherwise).
func WithTradeFee(fee float64, feeType common.FeeType) Option {
	return func(p *Product) {
		p.TradeFee = &fee
		p.FeeType = feeType
	}
}

// New constructs a Product, failing with common.ErrInvalidConfig if a trade
// fee is set without a recognised fee type.
func New(ticker string, mpv float64, opts ...Option) (Product, error) {
	p := Product{
		Ticker:  ticker,
		MPV:     mpv,
		LotSize: 1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.TradeFee != nil && p.FeeType != common.SetFee && p.FeeType != common.PercentageFee {
		return Product{}, fmt.Errorf("%w: product %s has trade_fee but fee_type is not SetFee or PercentageFee", common.ErrInvalidConfig, ticker)
	}
	return p, nil
}

// Catalog is an immutable lookup table of Products, populated once at
// construction and never mutated afterward.
type Catalog struct {
	products map[string]Product
	order    []string
}

// NewCatalog builds a Catalog from a set of products. Fails if a ticker
// appears twice.
func NewCatalog(products ...Product) (*Catalog, error) {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		if _, exists := c.products[p.Ticker]; exists {
			return nil, fmt.Errorf("%w: duplicate ticker %s in catalog", common.ErrInvalidConfig, p.Ticker)
		}
		c.products[p.Ticker] = p
		c.order = append(c.order, p.Ticker)
	}
	return c, nil
}

// Lookup returns the Product for ticker, if present.
func (c *Catalog) Lookup(ticker string) (Product, bool) {
	p, ok := c.products[ticker]
	return p, ok
}

// All enumerates products in catalog-construction order.
func (c *Catalog) All() []Product {
	out := make([]Product, 0, len(c.order))
	for _, ticker := range c.order {
		out = append(out, c.products[ticker])
	}
	return out
}

// Tickers enumerates ticker symbols in catalog-construction order.
func (c *Catalog) Tickers() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
