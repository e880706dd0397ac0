package config

import (
	"errors"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// OccupancyStep maps a minimum occupancy rate to a demand multiplier.
type OccupancyStep struct {
	MinOccupancy float64 `mapstructure:"minOccupancy"`
	Multiplier   float64 `mapstructure:"multiplier"`
}

// FareConfig holds operator-tunable pricing knobs.
type FareConfig struct {
	TaxRate         float64         `mapstructure:"taxRate"`
	DefaultCurrency string          `mapstructure:"defaultCurrency"`
	DefaultCapacity int             `mapstructure:"defaultCapacity"`
	OccupancySteps  []OccupancyStep `mapstructure:"occupancySteps"`
}

func DefaultFareConfig() FareConfig {
	return FareConfig{
		TaxRate:         0,
		DefaultCurrency: "USD",
		DefaultCapacity: 50,
		OccupancySteps: []OccupancyStep{
			{MinOccupancy: 0.8, Multiplier: 1.5},
			{MinOccupancy: 0.6, Multiplier: 1.3},
			{MinOccupancy: 0.4, Multiplier: 1.1},
		},
	}
}

type FareConfigHolder struct {
	current atomic.Value // holds FareConfig
}

func NewFareConfigHolder() (*FareConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("fare")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/farelane/config")
	v.AddConfigPath("/etc/farelane")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FARELANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultFareConfig()
	v.SetDefault("fare.taxRate", defaults.TaxRate)
	v.SetDefault("fare.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("fare.defaultCapacity", defaults.DefaultCapacity)
	v.SetDefault("fare.occupancySteps", defaults.OccupancySteps)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg FareConfig
	if err := v.UnmarshalKey("fare", &cfg); err != nil {
		return nil, err
	}
	if err := validateFareConfig(cfg); err != nil {
		return nil, err
	}
	normalizeFareConfig(&cfg)

	holder := &FareConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FareConfig
		if err := v.UnmarshalKey("fare", &updated); err != nil {
			log.Printf("[fare-config] reload failed: %v", err)
			return
		}
		if err := validateFareConfig(updated); err != nil {
			log.Printf("[fare-config] invalid config ignored: %v", err)
			return
		}
		normalizeFareConfig(&updated)
		holder.current.Store(updated)
		log.Printf("[fare-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticFareConfig wraps a fixed config. Used by tests and tooling that
// do not watch a config file.
func StaticFareConfig(cfg FareConfig) *FareConfigHolder {
	normalizeFareConfig(&cfg)
	holder := &FareConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *FareConfigHolder) Get() FareConfig {
	return h.current.Load().(FareConfig)
}

func validateFareConfig(cfg FareConfig) error {
	if cfg.TaxRate < 0 {
		return errors.New("fare.taxRate cannot be negative")
	}
	if cfg.DefaultCapacity <= 0 {
		return errors.New("fare.defaultCapacity must be positive")
	}
	for _, step := range cfg.OccupancySteps {
		if step.MinOccupancy < 0 || step.MinOccupancy > 1 {
			return errors.New("fare.occupancySteps minOccupancy must be within [0, 1]")
		}
		if step.Multiplier <= 0 {
			return errors.New("fare.occupancySteps multiplier must be positive")
		}
	}
	return nil
}

// normalizeFareConfig orders steps highest threshold first so lookups can
// take the first match.
func normalizeFareConfig(cfg *FareConfig) {
	sort.Slice(cfg.OccupancySteps, func(i, j int) bool {
		return cfg.OccupancySteps[i].MinOccupancy > cfg.OccupancySteps[j].MinOccupancy
	})
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
}
