// Package config holds the run settings shared by the commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

type Tree struct {
	Confidence float64 `toml:"confidence" yaml:"confidence" validate:"gt=0,lte=0.5"`
	MinLeaf    int     `toml:"min_leaf" yaml:"min_leaf" validate:"gte=1"`
	Unpruned   bool    `toml:"unpruned" yaml:"unpruned"`
}

type Forest struct {
	Trees    int `toml:"trees" yaml:"trees" validate:"gte=1"`
	Features int `toml:"features" yaml:"features" validate:"gte=0"`
	MaxDepth int `toml:"max_depth" yaml:"max_depth" validate:"gte=0"`
}

type Bagging struct {
	Iterations int `toml:"iterations" yaml:"iterations" validate:"gte=1"`
	BagPercent int `toml:"bag_percent" yaml:"bag_percent" validate:"gt=0,lte=100"`
}

// Conversion is one CSV to ARFF job. Keep projects the data onto the named
// attributes (plus the class); Nominal forces columns to nominal. Generate
// lists the attributes written when the input is synthesized, all of them
// when empty.
type Conversion struct {
	Input    string   `toml:"input" yaml:"input" validate:"required"`
	Output   string   `toml:"output" yaml:"output" validate:"required"`
	Keep     []string `toml:"keep" yaml:"keep"`
	Nominal  []string `toml:"nominal" yaml:"nominal"`
	Generate []string `toml:"generate" yaml:"generate"`
}

type Config struct {
	Datasets    []string     `toml:"datasets" yaml:"datasets" validate:"required,min=1,dive,required"`
	ModelDir    string       `toml:"model_dir" yaml:"model_dir" validate:"required"`
	ReportDir   string       `toml:"report_dir" yaml:"report_dir"`
	RenderDir   string       `toml:"render_dir" yaml:"render_dir"`
	RenderExt   string       `toml:"render_ext" yaml:"render_ext" validate:"oneof=png svg pdf"`
	Folds       int          `toml:"folds" yaml:"folds" validate:"gte=2"`
	Seed        int64        `toml:"seed" yaml:"seed"`
	ClassIndex  int          `toml:"class_index" yaml:"class_index"`
	Workers     int          `toml:"workers" yaml:"workers" validate:"gte=0"`
	Tree        Tree         `toml:"tree" yaml:"tree"`
	Forest      Forest       `toml:"forest" yaml:"forest"`
	Bagging     Bagging      `toml:"bagging" yaml:"bagging"`
	Conversions []Conversion `toml:"conversions" yaml:"conversions" validate:"dive"`
}

// SelectedAttributes are the predictors of the synthesized reduced nursery
// dataset.
var SelectedAttributes = []string{"parents", "has_nurs", "children", "health"}

// Defaults is the nursery experiment: both datasets, 10-fold CV with seed 1.
func Defaults() Config {
	return Config{
		Datasets:   []string{"Datasets/nursery_case0.arff", "Datasets/nursery_case1.arff"},
		ModelDir:   "Models",
		RenderDir:  "Models",
		RenderExt:  "png",
		Folds:      10,
		Seed:       1,
		ClassIndex: -1,
		Tree:       Tree{Confidence: 0.25, MinLeaf: 2},
		Forest:     Forest{Trees: 100, Features: 0, MaxDepth: 10},
		Bagging:    Bagging{Iterations: 10, BagPercent: 100},
		Conversions: []Conversion{
			{Input: "dataset/nursery_after_proc_case0.csv", Output: "Datasets/nursery_case0.arff", Nominal: []string{"last"}},
			{Input: "dataset/nursery_after_proc_case1.csv", Output: "Datasets/nursery_case1.arff", Nominal: []string{"last"}, Generate: SelectedAttributes},
		},
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load overlays the TOML or YAML file at path onto Defaults and validates the
// result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, cfg.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	// lists in the file replace the defaults rather than extend them
	datasets, conversions := cfg.Datasets, cfg.Conversions
	cfg.Datasets, cfg.Conversions = nil, nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("%s: unsupported config format, use .toml or .yaml", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Datasets) == 0 {
		cfg.Datasets = datasets
	}
	if len(cfg.Conversions) == 0 {
		cfg.Conversions = conversions
	}
	return cfg, cfg.Validate()
}
