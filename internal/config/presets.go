package config

import "sort"

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"overview": {
		Description: "current year, colored by magnitude, whole globe",
		apply: func(c *Config) {
			c.View.ColorBy = "mag"
			c.View.Distribution = "mag"
		},
	},
	"deep": {
		Description: "depth coloring and depth distribution",
		apply: func(c *Config) {
			c.View.ColorBy = "depth"
			c.View.Distribution = "depth"
			c.View.BaseLayer = "OpenTopoMap"
		},
	},
	"magnitude": {
		Description: "markers sized by magnitude, daily bins",
		apply: func(c *Config) {
			c.View.SizeByMagnitude = true
			c.View.BinWidth = "day"
			c.Animation.StepMillis = 100
		},
	},
	"history": {
		Description: "all years, colored by year, monthly bins",
		apply: func(c *Config) {
			c.Data.Year = "all"
			c.View.ColorBy = "year"
			c.View.BinWidth = "month"
			c.Animation.StepMillis = 20
		},
	},
}

// GetPreset returns the default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// ApplyPreset applies the named preset on top of cfg.
func ApplyPreset(cfg *Config, name string) bool {
	p, ok := Presets[name]
	if ok {
		p.apply(cfg)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
