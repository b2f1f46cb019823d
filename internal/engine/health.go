package engine

import (
	"fmt"
	"math"
)

// Level is the qualitative tier of a health score.
type Level string

const (
	LevelGood             Level = "good"
	LevelFair             Level = "fair"
	LevelNeedsImprovement Level = "needs improvement"
)

var levelColors = map[Level]string{
	LevelGood:             "green",
	LevelFair:             "yellow",
	LevelNeedsImprovement: "red",
}

// Color returns the display color associated with the level.
func (l Level) Color() string {
	return levelColors[l]
}

// EmergencyFundConfig scores cash holdings measured in months of expenses.
type EmergencyFundConfig struct {
	AdequateMinMonths float64 `mapstructure:"adequate_min_months"`
	AdequateMaxMonths float64 `mapstructure:"adequate_max_months"`
	LowMinMonths      float64 `mapstructure:"low_min_months"`
	NoDataPoints      float64 `mapstructure:"no_data_points"`
	AdequatePoints    float64 `mapstructure:"adequate_points"`
	ExcessPoints      float64 `mapstructure:"excess_points"`
	LowPoints         float64 `mapstructure:"low_points"`
	CriticalPoints    float64 `mapstructure:"critical_points"`
}

// PercentBandConfig scores a percentage where lower is healthier. Values above
// HighPercent earn HighPoints, values above ElevatedPercent earn
// ElevatedPoints, everything else earns HealthyPoints. Both thresholds belong
// to the lower band.
type PercentBandConfig struct {
	HighPercent     float64 `mapstructure:"high_percent"`
	ElevatedPercent float64 `mapstructure:"elevated_percent"`
	HighPoints      float64 `mapstructure:"high_points"`
	ElevatedPoints  float64 `mapstructure:"elevated_points"`
	HealthyPoints   float64 `mapstructure:"healthy_points"`
}

func (b PercentBandConfig) points(pct float64) (float64, band) {
	switch {
	case pct > b.HighPercent:
		return b.HighPoints, bandHigh
	case pct > b.ElevatedPercent:
		return b.ElevatedPoints, bandElevated
	default:
		return b.HealthyPoints, bandHealthy
	}
}

type band int

const (
	bandHealthy band = iota
	bandElevated
	bandHigh
)

// LevelConfig holds the minimum scores of the upper tiers.
type LevelConfig struct {
	GoodMin float64 `mapstructure:"good_min"`
	FairMin float64 `mapstructure:"fair_min"`
}

// HealthConfig carries every weight and threshold of the health score.
type HealthConfig struct {
	EmergencyFund EmergencyFundConfig `mapstructure:"emergency_fund"`
	Concentration PercentBandConfig   `mapstructure:"concentration"`
	StockExposure PercentBandConfig   `mapstructure:"stock_exposure"`
	Levels        LevelConfig         `mapstructure:"levels"`
}

// DefaultHealthConfig returns the stock 40/30/30 scoring heuristic.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		EmergencyFund: EmergencyFundConfig{
			AdequateMinMonths: 3,
			AdequateMaxMonths: 6,
			LowMinMonths:      1,
			NoDataPoints:      10,
			AdequatePoints:    40,
			ExcessPoints:      25,
			LowPoints:         15,
			CriticalPoints:    5,
		},
		Concentration: PercentBandConfig{
			HighPercent:     50,
			ElevatedPercent: 30,
			HighPoints:      5,
			ElevatedPoints:  15,
			HealthyPoints:   30,
		},
		StockExposure: PercentBandConfig{
			HighPercent:     60,
			ElevatedPercent: 35,
			HighPoints:      5,
			ElevatedPoints:  15,
			HealthyPoints:   30,
		},
		Levels: LevelConfig{GoodMin: 80, FairMin: 50},
	}
}

// HealthScore is the composite score with one feedback line per factor.
type HealthScore struct {
	Score      int      `json:"score"`
	Level      Level    `json:"level"`
	LevelColor string   `json:"level_color"`
	Feedback   []string `json:"feedback"`
}

// ScoreHealth grades emergency-fund coverage, investment concentration and
// individual-stock exposure. Feedback follows that order.
func ScoreHealth(accounts []ValuedAccount, records []CashflowRecord, cfg HealthConfig) HealthScore {
	summary := Summarize(accounts)
	if summary.Empty() {
		return HealthScore{
			Score:      0,
			Level:      LevelNeedsImprovement,
			LevelColor: LevelNeedsImprovement.Color(),
			Feedback:   []string{"Add your assets to get a financial health score."},
		}
	}

	var points float64
	feedback := make([]string, 0, 3)

	p, msg := scoreEmergencyFund(summary.ValueOf(AssetTypeCash), AverageMonthlyExpense(records), cfg.EmergencyFund)
	points += p
	feedback = append(feedback, msg)

	p, msg = scoreConcentration(accounts, cfg.Concentration)
	points += p
	feedback = append(feedback, msg)

	p, msg = scoreStockExposure(summary, cfg.StockExposure)
	points += p
	feedback = append(feedback, msg)

	score := int(math.Round(points))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := levelFor(score, cfg.Levels)
	return HealthScore{Score: score, Level: level, LevelColor: level.Color(), Feedback: feedback}
}

func levelFor(score int, cfg LevelConfig) Level {
	switch s := float64(score); {
	case s >= cfg.GoodMin:
		return LevelGood
	case s >= cfg.FairMin:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// CashMonths returns how many months of average expenses the cash covers, or
// 0 when there is no expense history.
func CashMonths(cash, avgMonthlyExpense float64) float64 {
	if avgMonthlyExpense <= 0 {
		return 0
	}
	return cash / avgMonthlyExpense
}

func scoreEmergencyFund(cash, avgExpense float64, cfg EmergencyFundConfig) (float64, string) {
	if avgExpense <= 0 {
		return cfg.NoDataPoints, "No expense records yet, so emergency fund coverage cannot be assessed."
	}

	months := CashMonths(cash, avgExpense)
	switch {
	case months >= cfg.AdequateMinMonths && months <= cfg.AdequateMaxMonths:
		return cfg.AdequatePoints, fmt.Sprintf("Emergency fund is adequate (%.1f months); your financial base is solid.", months)
	case months > cfg.AdequateMaxMonths:
		return cfg.ExcessPoints, fmt.Sprintf("Cash holdings are high (%.1f months); consider investing part of them.", months)
	case months >= cfg.LowMinMonths:
		return cfg.LowPoints, fmt.Sprintf("Emergency fund (%.1f months) is insufficient; build it up to %g-%g months.",
			months, cfg.AdequateMinMonths, cfg.AdequateMaxMonths)
	default:
		return cfg.CriticalPoints, fmt.Sprintf("Emergency fund is critically insufficient (%.1f months); prioritize saving.", months)
	}
}

// topInvestment returns the first stock or ETF holding with the largest local
// value together with the total local value of those holdings.
func topInvestment(accounts []ValuedAccount) (*ValuedAsset, float64) {
	var top *ValuedAsset
	var total float64
	for i := range accounts {
		for j := range accounts[i].Assets {
			a := &accounts[i].Assets[j]
			if a.Type != AssetTypeStock && a.Type != AssetTypeETF {
				continue
			}
			total += a.CurrentValueTWD
			if top == nil || a.CurrentValueTWD > top.CurrentValueTWD {
				top = a
			}
		}
	}
	return top, total
}

// Concentration returns the share, in percent, of the largest stock or ETF
// holding within all stock and ETF holdings.
func Concentration(accounts []ValuedAccount) float64 {
	top, total := topInvestment(accounts)
	if top == nil || total <= 0 {
		return 0
	}
	return top.CurrentValueTWD * 100 / total
}

func scoreConcentration(accounts []ValuedAccount, cfg PercentBandConfig) (float64, string) {
	pct := Concentration(accounts)
	points, b := cfg.points(pct)
	switch b {
	case bandHigh:
		var code string
		if top, _ := topInvestment(accounts); top != nil {
			code = top.Code
		}
		return points, fmt.Sprintf("Investments are heavily concentrated in %q (%.1f%%); risk is very high.", code, pct)
	case bandElevated:
		return points, fmt.Sprintf("A single holding carries a large share (%.1f%%); consider diversifying.", pct)
	default:
		return points, fmt.Sprintf("Portfolio is well diversified; the largest holding is %.1f%%.", pct)
	}
}

// StockExposure returns individual stocks as a percentage of total assets.
func StockExposure(summary Summary) float64 {
	if summary.Total <= 0 {
		return 0
	}
	return summary.ValueOf(AssetTypeStock) * 100 / summary.Total
}

func scoreStockExposure(summary Summary, cfg PercentBandConfig) (float64, string) {
	pct := StockExposure(summary)
	points, b := cfg.points(pct)
	switch b {
	case bandHigh:
		return points, fmt.Sprintf("Individual stocks are %.1f%% of total assets; the allocation is too aggressive.", pct)
	case bandElevated:
		return points, fmt.Sprintf("Individual stocks at %.1f%% of total assets is on the high side; watch your risk.", pct)
	default:
		return points, fmt.Sprintf("Individual stock risk is under control at %.1f%% of total assets.", pct)
	}
}
