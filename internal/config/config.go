package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/geo"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
)

const (
	DefaultDataDir    = "."
	DefaultYear       = "2024"
	DefaultStepMillis = 200
	DefaultColorBy    = "mag"
	DefaultBinWidth   = "week"
	DefaultLogLevel   = "info"
)

type Config struct {
	Data      DataConfig      `yaml:"data"`
	View      ViewConfig      `yaml:"view"`
	Animation AnimationConfig `yaml:"animation"`
	Log       LogConfig       `yaml:"log"`
}

type DataConfig struct {
	Dir       string `yaml:"dir"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Year      string `yaml:"year"`
	FirstYear int    `yaml:"first_year"`
	LastYear  int    `yaml:"last_year"`
}

type ViewConfig struct {
	ColorBy         string     `yaml:"color_by"`
	SizeByMagnitude bool       `yaml:"size_by_magnitude"`
	Distribution    string     `yaml:"distribution"`
	BinWidth        string     `yaml:"bin_width"`
	Timezone        string     `yaml:"timezone,omitempty"`
	Center          geo.LatLng `yaml:"center"`
	Zoom            int        `yaml:"zoom"`
	BaseLayer       string     `yaml:"base_layer"`
}

type AnimationConfig struct {
	StepMillis int `yaml:"step_ms"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       DefaultDataDir,
			Year:      DefaultYear,
			FirstYear: loader.DefaultFirstYear,
			LastYear:  loader.DefaultLastYear,
		},
		View: ViewConfig{
			ColorBy:      DefaultColorBy,
			Distribution: string(distribution.KindMagnitude),
			BinWidth:     DefaultBinWidth,
			Center:       geo.DefaultCenter,
			Zoom:         geo.DefaultZoom,
			BaseLayer:    view.BaseLayers[0].Name,
		},
		Animation: AnimationConfig{StepMillis: DefaultStepMillis},
		Log:       LogConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every enumerated field and returns all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Selector(); err != nil {
		errs = append(errs, err)
	}
	if c.Data.FirstYear > c.Data.LastYear {
		errs = append(errs, fmt.Errorf("first_year %d is after last_year %d", c.Data.FirstYear, c.Data.LastYear))
	}
	if _, err := quake.ParseAttribute(c.View.ColorBy); err != nil {
		errs = append(errs, err)
	}
	if _, err := distribution.ParseKind(c.View.Distribution); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Interval(); err != nil {
		errs = append(errs, err)
	}
	if c.Animation.StepMillis <= 0 {
		errs = append(errs, fmt.Errorf("step_ms must be positive, got %d", c.Animation.StepMillis))
	}
	return errors.Join(errs...)
}

func (c *Config) Selector() (loader.Selector, error) {
	return loader.ParseSelector(c.Data.Year)
}

func (c *Config) Location() (*time.Location, error) {
	if c.View.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.View.Timezone)
}

func (c *Config) Interval() (timeline.Interval, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return timeline.ParseInterval(c.View.BinWidth, loc)
}

func (c *Config) Step() time.Duration {
	return time.Duration(c.Animation.StepMillis) * time.Millisecond
}

// ViewOptions converts the encoding settings; call Validate first.
func (c *Config) ViewOptions() view.Options {
	return view.Options{
		ColorBy:         quake.Attribute(c.View.ColorBy),
		SizeByMagnitude: c.View.SizeByMagnitude,
		Distribution:    distribution.Kind(c.View.Distribution),
	}
}

func (c *Config) Source() loader.Source {
	return loader.NewSource(c.Data.Dir, c.Data.BaseURL)
}
