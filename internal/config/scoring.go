package config

import (
	"fmt"
	"strings"

	"fintrack/internal/engine"

	"github.com/spf13/viper"
)

// ScoringEnvPrefix prefixes environment overrides of health scoring keys,
// e.g. FINTRACK_SCORING_LEVELS_GOOD_MIN=75.
const ScoringEnvPrefix = "FINTRACK_SCORING"

// LoadScoring builds the health scoring configuration. Defaults come from
// engine.DefaultHealthConfig, then the optional YAML file at path, then
// environment overrides.
func LoadScoring(path string) (engine.HealthConfig, error) {
	v := viper.New()
	setScoringDefaults(v, engine.DefaultHealthConfig())

	v.SetEnvPrefix(ScoringEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return engine.HealthConfig{}, fmt.Errorf("read scoring config: %w", err)
		}
	}

	var cfg engine.HealthConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return engine.HealthConfig{}, fmt.Errorf("unmarshal scoring config: %w", err)
	}
	if err := validateScoring(cfg); err != nil {
		return engine.HealthConfig{}, err
	}
	return cfg, nil
}

func setScoringDefaults(v *viper.Viper, d engine.HealthConfig) {
	ef := d.EmergencyFund
	v.SetDefault("emergency_fund.adequate_min_months", ef.AdequateMinMonths)
	v.SetDefault("emergency_fund.adequate_max_months", ef.AdequateMaxMonths)
	v.SetDefault("emergency_fund.low_min_months", ef.LowMinMonths)
	v.SetDefault("emergency_fund.no_data_points", ef.NoDataPoints)
	v.SetDefault("emergency_fund.adequate_points", ef.AdequatePoints)
	v.SetDefault("emergency_fund.excess_points", ef.ExcessPoints)
	v.SetDefault("emergency_fund.low_points", ef.LowPoints)
	v.SetDefault("emergency_fund.critical_points", ef.CriticalPoints)

	for key, band := range map[string]engine.PercentBandConfig{
		"concentration":  d.Concentration,
		"stock_exposure": d.StockExposure,
	} {
		v.SetDefault(key+".high_percent", band.HighPercent)
		v.SetDefault(key+".elevated_percent", band.ElevatedPercent)
		v.SetDefault(key+".high_points", band.HighPoints)
		v.SetDefault(key+".elevated_points", band.ElevatedPoints)
		v.SetDefault(key+".healthy_points", band.HealthyPoints)
	}

	v.SetDefault("levels.good_min", d.Levels.GoodMin)
	v.SetDefault("levels.fair_min", d.Levels.FairMin)
}

func validateScoring(cfg engine.HealthConfig) error {
	ef := cfg.EmergencyFund
	if ef.LowMinMonths > ef.AdequateMinMonths || ef.AdequateMinMonths > ef.AdequateMaxMonths {
		return fmt.Errorf("scoring config: emergency fund months must satisfy low <= adequate_min <= adequate_max")
	}
	for name, band := range map[string]engine.PercentBandConfig{
		"concentration":  cfg.Concentration,
		"stock_exposure": cfg.StockExposure,
	} {
		if band.ElevatedPercent > band.HighPercent {
			return fmt.Errorf("scoring config: %s elevated_percent exceeds high_percent", name)
		}
	}
	if cfg.Levels.FairMin > cfg.Levels.GoodMin {
		return fmt.Errorf("scoring config: levels fair_min exceeds good_min")
	}
	return nil
}
