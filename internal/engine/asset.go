// Package engine derives display-ready financial metrics from account and
// cashflow snapshots. Every function is pure: inputs are never mutated, no
// package state is kept, and malformed numbers degrade to zero instead of
// returning errors.
package engine

// AssetType is the variant key of an Asset.
type AssetType string

const (
	AssetTypeCash       AssetType = "cash"
	AssetTypeETF        AssetType = "etf"
	AssetTypeStock      AssetType = "stock"
	AssetTypeRealEstate AssetType = "real_estate"
	AssetTypeUSDOther   AssetType = "usd_other"
)

// breakdownOrder is the fixed display order of the allocation breakdown.
var breakdownOrder = []AssetType{
	AssetTypeCash,
	AssetTypeETF,
	AssetTypeStock,
	AssetTypeRealEstate,
	AssetTypeUSDOther,
}

var assetTypeColors = map[AssetType]string{
	AssetTypeCash:       "#10B981",
	AssetTypeETF:        "#3B82F6",
	AssetTypeStock:      "#EF4444",
	AssetTypeRealEstate: "#F59E0B",
	AssetTypeUSDOther:   "#8B5CF6",
}

// AssetTypes returns every known asset type in breakdown order.
func AssetTypes() []AssetType {
	out := make([]AssetType, len(breakdownOrder))
	copy(out, breakdownOrder)
	return out
}

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	_, ok := assetTypeColors[t]
	return ok
}

// UnitBased reports whether the asset is priced per unit (shares) rather than
// recorded as a lump sum.
func (t AssetType) UnitBased() bool {
	switch t {
	case AssetTypeStock, AssetTypeETF:
		return true
	case AssetTypeCash, AssetTypeRealEstate, AssetTypeUSDOther:
		return false
	}
	return true
}

// Investment reports whether the asset counts toward the P&L statement.
func (t AssetType) Investment() bool {
	switch t {
	case AssetTypeStock, AssetTypeETF, AssetTypeUSDOther:
		return true
	}
	return false
}

// Color returns the display color of the type, or "" for unknown types.
func (t AssetType) Color() string {
	return assetTypeColors[t]
}

// Currency is the native currency of an asset or record.
type Currency string

const (
	CurrencyTWD Currency = "TWD"
	CurrencyUSD Currency = "USD"
)

// Foreign reports whether amounts in c must be converted with the FX rate.
func (c Currency) Foreign() bool {
	return c == CurrencyUSD
}

// Asset is a single holding inside an account. Cost and CurrentValue are per
// unit in the asset's native currency.
type Asset struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Type         AssetType `json:"account_type"`
	Units        Number    `json:"units"`
	Cost         Number    `json:"cost"`
	CurrentValue Number    `json:"current_value"`
	Currency     Currency  `json:"currency"`
}

// Canonical applies the per-variant shape rules used when an asset is saved:
// lump-sum variants hold exactly one unit, cash is carried at its value, and
// USD-denominated other assets are always in USD.
func (a Asset) Canonical() Asset {
	out := a
	out.Units = Number(nonNegative(a.Units.Float()))
	out.Cost = Number(nonNegative(a.Cost.Float()))
	out.CurrentValue = Number(nonNegative(a.CurrentValue.Float()))
	if out.Currency == "" {
		out.Currency = CurrencyTWD
	}

	switch a.Type {
	case AssetTypeCash:
		out.Units = 1
		out.Cost = out.CurrentValue
	case AssetTypeRealEstate:
		out.Units = 1
	case AssetTypeUSDOther:
		out.Units = 1
		out.Currency = CurrencyUSD
	case AssetTypeStock, AssetTypeETF:
	}
	return out
}

// quantity is the multiplier applied to the per-unit figures.
func (a Asset) quantity() float64 {
	units := nonNegative(a.Units.Float())
	switch a.Type {
	case AssetTypeStock, AssetTypeETF:
		return units
	case AssetTypeCash, AssetTypeRealEstate, AssetTypeUSDOther:
		if units == 0 {
			return 1
		}
		return units
	}
	return units
}

// Account groups the assets held at one institution or wallet.
type Account struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Assets []Asset `json:"assets"`
}
