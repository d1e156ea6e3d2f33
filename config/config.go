// Package config assembles run settings from command line flags and an
// optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"gallerycurator/imageprocessor"
	"gallerycurator/signalhandler"
	"gallerycurator/similarity"
	"gallerycurator/utils"
)

// Config holds everything a command needs
type Config struct {
	Command string

	Root       string
	OutputDir  string // gallery folder, slash separated and relative to Root
	Catalog    string
	Extensions []string
	Workers    int
	Recursive  bool
	UseExif    bool
	DryRun     bool

	Image string
	Other string

	Debug   bool
	LogFile string

	Thresholds similarity.Thresholds
}

// fileTier mirrors similarity.Tier; a tier without max_average has no
// average hash bound
type fileTier struct {
	MaxDifference int     `toml:"max_difference"`
	MaxAverage    *int    `toml:"max_average"`
	MaxColor      float64 `toml:"max_color"`
}

func (t fileTier) tier() similarity.Tier {
	tier := similarity.Tier{
		MaxDifference: t.MaxDifference,
		MaxAverage:    similarity.NoBound,
		MaxColor:      t.MaxColor,
	}
	if t.MaxAverage != nil {
		tier.MaxAverage = *t.MaxAverage
	}
	return tier
}

// fileConfig is the layout of the --config TOML file
type fileConfig struct {
	Similarity struct {
		MaxAspectDelta *float64   `toml:"max_aspect_delta"`
		Tiers          []fileTier `toml:"tiers"`
	} `toml:"similarity"`
	Gallery struct {
		Output  string `toml:"output"`
		Catalog string `toml:"catalog"`
	} `toml:"gallery"`
}

// Default returns the configuration used when no flag overrides it
func Default() Config {
	return Config{
		OutputDir:  "assets/gallery",
		Extensions: imageprocessor.DefaultCandidateExtensions,
		Workers:    signalhandler.GetOptimalProcs(),
		Thresholds: similarity.DefaultThresholds(),
	}
}

// PhotoDir is where kept images are moved
func (c Config) PhotoDir() string {
	return path.Join(c.OutputDir, "photos")
}

// Load builds a Config from parsed arguments. File values override the
// defaults and flags override the file.
func Load(args map[string]string) (Config, error) {
	cfg := Default()
	cfg.Command = args["command"]

	if file, ok := args["config"]; ok && file != "" {
		if err := cfg.loadFile(file); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyFlags(args); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(file string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(file, &fc)
	if err != nil {
		return fmt.Errorf("cannot read config %s: %w", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in %s: %v", file, undecoded)
	}

	if fc.Similarity.MaxAspectDelta != nil {
		c.Thresholds.MaxAspectDelta = *fc.Similarity.MaxAspectDelta
	}
	if md.IsDefined("similarity", "tiers") {
		c.Thresholds.Tiers = make([]similarity.Tier, len(fc.Similarity.Tiers))
		for i, t := range fc.Similarity.Tiers {
			c.Thresholds.Tiers[i] = t.tier()
		}
	}
	if fc.Gallery.Output != "" {
		c.OutputDir = fc.Gallery.Output
	}
	if fc.Gallery.Catalog != "" {
		c.Catalog = fc.Gallery.Catalog
	}
	return nil
}

func (c *Config) applyFlags(args map[string]string) error {
	var err error

	if v, ok := args["root"]; ok {
		c.Root = v
	}
	if v, ok := args["output"]; ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := args["catalog"]; ok {
		c.Catalog = v
	}
	if v, ok := args["image"]; ok {
		c.Image = v
	}
	if v, ok := args["other"]; ok {
		c.Other = v
	}
	if v, ok := args["logfile"]; ok {
		c.LogFile = v
	}
	if v, ok := args["formats"]; ok {
		c.Extensions = utils.ParseExtensions(v)
	}
	if v, ok := args["workers"]; ok {
		if c.Workers, err = utils.ParsePositiveInt(v); err != nil {
			return fmt.Errorf("--workers: %w", err)
		}
	}
	if v, ok := args["aspect"]; ok {
		if c.Thresholds.MaxAspectDelta, err = utils.ParseFloatInRange(v, 0, 1); err != nil {
			return fmt.Errorf("--aspect: %w", err)
		}
	}

	flags := map[string]*bool{
		"recursive": &c.Recursive,
		"exif":      &c.UseExif,
		"dry-run":   &c.DryRun,
		"debug":     &c.Debug,
	}
	for name, dst := range flags {
		v, ok := args[name]
		if !ok {
			continue
		}
		if *dst, err = utils.ParseBool(v); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks the fields the chosen command relies on
func (c Config) Validate() error {
	switch c.Command {
	case "curate", "report":
		if c.Root == "" {
			return errors.New("missing folder (use --root=DIR)")
		}
		info, err := os.Stat(c.Root)
		if err != nil {
			return fmt.Errorf("cannot access root %s: %w", c.Root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("root %s is not a directory", c.Root)
		}
		if len(c.Extensions) == 0 {
			return errors.New("no image formats selected")
		}
		for _, ext := range c.Extensions {
			if !imageprocessor.IsImageFile("x" + ext) {
				return fmt.Errorf("unsupported format %s (supported: %s)", ext,
					strings.Join(imageprocessor.GetSupportedExtensions(), ", "))
			}
		}
		if strings.HasPrefix(c.OutputDir, "/") || strings.HasPrefix(path.Clean(c.OutputDir), "..") {
			return fmt.Errorf("output %s must be relative to the root", c.OutputDir)
		}
	case "compare":
		if c.Image == "" || c.Other == "" {
			return errors.New("compare needs --image=PATH and --other=PATH")
		}
	case "":
		return errors.New("missing command")
	default:
		return fmt.Errorf("unknown command: %s", c.Command)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid similarity thresholds: %w", err)
	}
	return nil
}
