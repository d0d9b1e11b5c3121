// Package config loads a run's product catalog and run parameters from
// YAML. Grounded on the teacher's gopkg.in/yaml.v3 dependency (fenrir never
// actually parsed config from file, but carried the library in go.mod for
// its connection-settings struct); here it is put to its natural use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/QFinUWA/QFinProject2/internal/catalog"
	"github.com/QFinUWA/QFinProject2/internal/common"
)

// ProductSpec is the YAML shape of one catalog entry. Pointer fields are
// optional and map onto catalog.Product's own optional fields.
type ProductSpec struct {
	Ticker   string   `yaml:"ticker"`
	MPV      float64  `yaml:"mpv"`
	LotSize  int64    `yaml:"lot_size"`
	PosLimit *int64   `yaml:"pos_limit"`
	MinPrice float64  `yaml:"min_price"`
	MaxPrice *float64 `yaml:"max_price"`
	Fine     float64  `yaml:"fine"`

	TradeFee *float64 `yaml:"trade_fee"`
	FeeType  string   `yaml:"fee_type"` // "set" | "percentage"

	Conversions   map[string]int64 `yaml:"conversions"`
	ConversionFee *float64         `yaml:"conversion_fee"`
}

// RunSpec is the top-level YAML document: the product catalog plus run
// parameters (tick horizon, output directory, designated player).
type RunSpec struct {
	Products  []ProductSpec `yaml:"products"`
	Ticks     int64         `yaml:"ticks"`
	OutputDir string        `yaml:"output_dir"`
	Player    string        `yaml:"player"`
}

// Load reads and parses a RunSpec from path.
func Load(path string) (RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunSpec{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return RunSpec{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return spec, nil
}

// BuildCatalog converts the parsed product specs into a catalog.Catalog,
// failing with common.ErrInvalidConfig under the same rules catalog.New and
// catalog.NewCatalog enforce (trade fee requires a fee type, no duplicate
// tickers).
func (r RunSpec) BuildCatalog() (*catalog.Catalog, error) {
	products := make([]catalog.Product, 0, len(r.Products))
	for _, spec := range r.Products {
		opts, err := spec.options()
		if err != nil {
			return nil, err
		}
		p, err := catalog.New(spec.Ticker, spec.MPV, opts...)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return catalog.NewCatalog(products...)
}

func (s ProductSpec) options() ([]catalog.Option, error) {
	var opts []catalog.Option
	if s.LotSize > 0 {
		opts = append(opts, catalog.WithLotSize(s.LotSize))
	}
	if s.PosLimit != nil {
		opts = append(opts, catalog.WithPosLimit(*s.PosLimit))
	}
	if s.MinPrice != 0 {
		opts = append(opts, catalog.WithMinPrice(s.MinPrice))
	}
	if s.MaxPrice != nil {
		opts = append(opts, catalog.WithMaxPrice(*s.MaxPrice))
	}
	if s.Fine != 0 {
		opts = append(opts, catalog.WithFine(s.Fine))
	}
	if s.Conversions != nil {
		fee := 0.0
		if s.ConversionFee != nil {
			fee = *s.ConversionFee
		}
		opts = append(opts, catalog.WithConversions(fee, s.Conversions))
	}
	if s.TradeFee != nil {
		feeType, err := parseFeeType(s.FeeType)
		if err != nil {
			return nil, fmt.Errorf("config: product %s: %w", s.Ticker, err)
		}
		opts = append(opts, catalog.WithTradeFee(*s.TradeFee, feeType))
	}
	return opts, nil
}

func parseFeeType(s string) (common.FeeType, error) {
	switch s {
	case "set":
		return common.SetFee, nil
	case "percentage":
		return common.PercentageFee, nil
	default:
		return common.NoFee, fmt.Errorf("%w: unrecognised fee_type %q", common.ErrInvalidConfig, s)
	}
}
