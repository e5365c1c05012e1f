package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProductPrices holds the per-unit price each supplying tier charges.
type ProductPrices struct {
	Manufacturer float64 `yaml:"manufacturer" json:"manufacturer"`
	Processor    float64 `yaml:"processor" json:"processor"`
	Farmer       float64 `yaml:"farmer" json:"farmer"`
	Harvester    float64 `yaml:"harvester" json:"harvester"`
}

// Factors are the process-wide simulation constants, fixed for the lifetime
// of the process. They are loaded once from YAML and shared read-only by
// every game.
type Factors struct {
	RoundIncrement            int           `yaml:"round_increment" json:"roundIncrement"`
	InitialCapital            float64       `yaml:"initial_capital" json:"initialCapital"`
	SetupCost                 float64       `yaml:"setup_cost" json:"setupCost"`
	MinimumGuaranteedCapacity int           `yaml:"minimum_guaranteed_capacity" json:"minimumGuaranteedCapacity"`
	FallbackCapacityPenalty   float64       `yaml:"fallback_capacity_penalty" json:"fallbackCapacityPenalty"`
	HoldingCostPerUnit        float64       `yaml:"holding_cost_per_unit" json:"holdingCostPerUnit"`
	Prices                    ProductPrices `yaml:"product_prices" json:"productPrices"`
	Roles                     []*Role       `yaml:"roles" json:"roles"`
	Options                   []*Option     `yaml:"options" json:"options"`
}

// DefaultFactors returns the built-in tuning used when no YAML file is given.
func DefaultFactors() *Factors {
	return &Factors{
		RoundIncrement:            5,
		InitialCapital:            250000,
		SetupCost:                 25000,
		MinimumGuaranteedCapacity: 10,
		FallbackCapacityPenalty:   1200,
		HoldingCostPerUnit:        5,
		Prices: ProductPrices{
			Manufacturer: 30,
			Processor:    24,
			Farmer:       18,
			Harvester:    12,
		},
		Roles: []*Role{
			{ID: RoleRetailer, LeadTime: 5},
			{ID: RoleManufacturer, LeadTime: 10},
			{ID: RoleProcessor, LeadTime: 15},
			{ID: RoleFarmer, LeadTime: 20},
		},
		Options: []*Option{
			{Name: "Basic", Role: RoleRetailer, CostOfStartup: 0, CapacityPenalty: 1000},
			{Name: "Blockchain", Role: RoleRetailer, CostOfStartup: 15000, CapacityPenalty: 500},
			{Name: "Basic", Role: RoleManufacturer, CostOfStartup: 0, CapacityPenalty: 1100},
			{Name: "Blockchain", Role: RoleManufacturer, CostOfStartup: 17500, CapacityPenalty: 550},
			{Name: "Basic", Role: RoleProcessor, CostOfStartup: 0, CapacityPenalty: 1150},
			{Name: "Blockchain", Role: RoleProcessor, CostOfStartup: 20000, CapacityPenalty: 575},
			{Name: "Basic", Role: RoleFarmer, CostOfStartup: 0, CapacityPenalty: 1200},
			{Name: "Blockchain", Role: RoleFarmer, CostOfStartup: 22500, CapacityPenalty: 600},
		},
	}
}

// LoadFactors reads tuning from a YAML file. Fields left unset keep their
// default value, so partial files are fine.
func LoadFactors(path string) (*Factors, error) {
	f := DefaultFactors()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("parse factors: %w", err)
	}
	if f.RoundIncrement < 1 {
		return nil, fmt.Errorf("round_increment must be at least 1, got %d", f.RoundIncrement)
	}
	return f, nil
}

// RoleByID looks up a role from the static table.
func (f *Factors) RoleByID(id RoleID) *Role {
	for _, r := range f.Roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// OptionFor looks up an option by owning role and name.
func (f *Factors) OptionFor(role RoleID, name string) *Option {
	for _, o := range f.Options {
		if o.Role == role && o.Name == name {
			return o
		}
	}
	return nil
}

// SupplierPrice returns the per-unit price a tier pays for inbound goods,
// which is the price charged by the tier directly upstream. The Farmer buys
// from the synthetic harvester.
func (f *Factors) SupplierPrice(role RoleID) float64 {
	switch role {
	case RoleRetailer:
		return f.Prices.Manufacturer
	case RoleManufacturer:
		return f.Prices.Processor
	case RoleProcessor:
		return f.Prices.Farmer
	default:
		return f.Prices.Harvester
	}
}
