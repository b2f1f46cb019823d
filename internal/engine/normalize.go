package engine

// Valuation holds the local-currency figures derived for an asset.
type Valuation struct {
	CurrentValueTWD float64 `json:"current_value_twd"`
	CostTWD         float64 `json:"cost_twd"`
	ProfitLossTWD   float64 `json:"profit_loss_twd"`
}

// ValuedAsset is an Asset together with its derived Valuation.
type ValuedAsset struct {
	Asset
	Valuation
}

// ValuedAccount mirrors Account with every asset valued.
type ValuedAccount struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Assets []ValuedAsset `json:"assets"`
}

// Raw strips the derived fields, returning the Account the values came from.
func (v ValuedAccount) Raw() Account {
	assets := make([]Asset, len(v.Assets))
	for i := range v.Assets {
		assets[i] = v.Assets[i].Asset
	}
	return Account{ID: v.ID, Name: v.Name, Assets: assets}
}

// TotalTWD sums the current local value of every asset in the account.
func (v ValuedAccount) TotalTWD() float64 {
	var total float64
	for i := range v.Assets {
		total += v.Assets[i].CurrentValueTWD
	}
	return total
}

// rateFor returns the multiplier converting c into the local currency.
func rateFor(c Currency, fxRate float64) float64 {
	if c.Foreign() {
		return nonNegative(fxRate)
	}
	return 1
}

// Value computes the local-currency valuation of a single asset.
func Value(a Asset, fxRate float64) Valuation {
	rate := rateFor(a.Currency, fxRate)
	qty := a.quantity()

	current := nonNegative(a.CurrentValue.Float()) * qty * rate
	cost := nonNegative(a.Cost.Float()) * qty * rate
	return Valuation{
		CurrentValueTWD: current,
		CostTWD:         cost,
		ProfitLossTWD:   current - cost,
	}
}

// Normalize values every asset of every account with the given USD rate.
// Account and asset order and identity are preserved.
func Normalize(accounts []Account, fxRate float64) []ValuedAccount {
	out := make([]ValuedAccount, len(accounts))
	for i, acc := range accounts {
		assets := make([]ValuedAsset, len(acc.Assets))
		for j, a := range acc.Assets {
			assets[j] = ValuedAsset{Asset: a, Valuation: Value(a, fxRate)}
		}
		out[i] = ValuedAccount{ID: acc.ID, Name: acc.Name, Assets: assets}
	}
	return out
}

// Renormalize re-derives valuations from the raw part of already valued accounts.
func Renormalize(accounts []ValuedAccount, fxRate float64) []ValuedAccount {
	raw := make([]Account, len(accounts))
	for i := range accounts {
		raw[i] = accounts[i].Raw()
	}
	return Normalize(raw, fxRate)
}
