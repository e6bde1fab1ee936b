package model

import "github.com/shopspring/decimal"

// TaxComponent is one named rate inside a jurisdiction, e.g. state or city.
type TaxComponent struct {
	Code string          `json:"code"`
	Name string          `json:"name,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

// TaxJurisdiction carries a flat rate and its optional component breakdown.
type TaxJurisdiction struct {
	Code       string          `json:"code"`
	Name       string          `json:"name,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
	Components []TaxComponent  `json:"components,omitempty"`
}

// TaxConfig is a tenant's jurisdiction list.
type TaxConfig struct {
	Jurisdictions           []TaxJurisdiction `json:"jurisdictions,omitempty"`
	DefaultJurisdictionCode string            `json:"defaultJurisdictionCode,omitempty"`
}

// Jurisdiction returns the jurisdiction with the given code.
func (c TaxConfig) Jurisdiction(code string) (TaxJurisdiction, bool) {
	if code == "" {
		return TaxJurisdiction{}, false
	}
	for _, j := range c.Jurisdictions {
		if j.Code == code {
			return j, true
		}
	}
	return TaxJurisdiction{}, false
}
