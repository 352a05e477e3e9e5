package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete featurize configuration. Environment variables
// (prefix NYTF_) take precedence; a YAML file fills in whatever they left
// unset.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Features FeaturesConfig `yaml:"features" envconfig:"FEATURES"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/featurize.log"`
}

// PathsConfig locates the raw and processed data directories.
type PathsConfig struct {
	RawDir string `yaml:"raw_dir" envconfig:"RAW_DIR" default:"data/raw"`
	OutDir string `yaml:"out_dir" envconfig:"OUT_DIR" default:"data/processed"`
}

// CleaningConfig bounds the accepted fare range and coordinate box.
// The bounding box is specific to the NYC training set.
type CleaningConfig struct {
	FareMin float64 `yaml:"fare_min" envconfig:"FARE_MIN" default:"0"`
	FareMax float64 `yaml:"fare_max" envconfig:"FARE_MAX" default:"1000"`
	LatMin  float64 `yaml:"lat_min" envconfig:"LAT_MIN" default:"40.0"`
	LatMax  float64 `yaml:"lat_max" envconfig:"LAT_MAX" default:"42.0"`
	LonMin  float64 `yaml:"lon_min" envconfig:"LON_MIN" default:"-75.0"`
	LonMax  float64 `yaml:"lon_max" envconfig:"LON_MAX" default:"-72.0"`
}

// FeaturesConfig selects which feature families the pipeline derives and
// how the distance calculations are parameterized.
type FeaturesConfig struct {
	Timezone         string   `yaml:"timezone" envconfig:"TIMEZONE" default:"America/New_York"`
	TemporalFeatures []string `yaml:"temporal_features" envconfig:"TEMPORAL_FEATURES"`
	BusinessFlags    bool     `yaml:"business_flags" envconfig:"BUSINESS_FLAGS" default:"true"`
	CyclicHour       bool     `yaml:"cyclic_hour" envconfig:"CYCLIC_HOUR" default:"true"`
	GeoDistances     bool     `yaml:"geo_distances" envconfig:"GEO_DISTANCES" default:"true"`
	AngleUnit        string   `yaml:"angle_unit" envconfig:"ANGLE_UNIT" default:"deg"`
	SphereRadiusKm   float64  `yaml:"sphere_radius_km" envconfig:"SPHERE_RADIUS_KM" default:"6371"`
	// PlaneRotation is in radians; Manhattan's grid sits roughly 0.506 rad
	// (29 degrees) off true north.
	PlaneRotation float64 `yaml:"plane_rotation" envconfig:"PLANE_ROTATION" default:"0"`
	HolidayScores bool    `yaml:"holiday_scores" envconfig:"HOLIDAY_SCORES" default:"true"`
	HolidayState  string  `yaml:"holiday_state" envconfig:"HOLIDAY_STATE" default:"NY"`
	Workers       int     `yaml:"workers" envconfig:"WORKERS" default:"4"`
}

// Load builds the configuration from environment variables and, when the
// file exists, a YAML overlay for fields the environment left at zero.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NYTF", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("load config file %s: %w", configFile, err)
			}
			cfg.merge(fileCfg)
		}
	}

	return &cfg, nil
}

// fileConfig mirrors Config with pointer fields so a YAML overlay can
// tell "set to zero or false" apart from "not set".
type fileConfig struct {
	Logging struct {
		Level    *string `yaml:"level"`
		Format   *string `yaml:"format"`
		Output   *string `yaml:"output"`
		FilePath *string `yaml:"file_path"`
	} `yaml:"logging"`
	Paths struct {
		RawDir *string `yaml:"raw_dir"`
		OutDir *string `yaml:"out_dir"`
	} `yaml:"paths"`
	Cleaning struct {
		FareMin *float64 `yaml:"fare_min"`
		FareMax *float64 `yaml:"fare_max"`
		LatMin  *float64 `yaml:"lat_min"`
		LatMax  *float64 `yaml:"lat_max"`
		LonMin  *float64 `yaml:"lon_min"`
		LonMax  *float64 `yaml:"lon_max"`
	} `yaml:"cleaning"`
	Features struct {
		Timezone         *string  `yaml:"timezone"`
		TemporalFeatures []string `yaml:"temporal_features"`
		BusinessFlags    *bool    `yaml:"business_flags"`
		CyclicHour       *bool    `yaml:"cyclic_hour"`
		GeoDistances     *bool    `yaml:"geo_distances"`
		AngleUnit        *string  `yaml:"angle_unit"`
		SphereRadiusKm   *float64 `yaml:"sphere_radius_km"`
		PlaneRotation    *float64 `yaml:"plane_rotation"`
		HolidayScores    *bool    `yaml:"holiday_scores"`
		HolidayState     *string  `yaml:"holiday_state"`
		Workers          *int     `yaml:"workers"`
	} `yaml:"features"`
}

func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge copies file values into c, field by field, skipping any field
// whose NYTF_* environment variable is set (env takes precedence).
func (c *Config) merge(file *fileConfig) {
	overlay(&c.Logging.Level, file.Logging.Level, "NYTF_LOGGING_LEVEL")
	overlay(&c.Logging.Format, file.Logging.Format, "NYTF_LOGGING_FORMAT")
	overlay(&c.Logging.Output, file.Logging.Output, "NYTF_LOGGING_OUTPUT")
	overlay(&c.Logging.FilePath, file.Logging.FilePath, "NYTF_LOGGING_FILE_PATH")
	overlay(&c.Paths.RawDir, file.Paths.RawDir, "NYTF_PATHS_RAW_DIR")
	overlay(&c.Paths.OutDir, file.Paths.OutDir, "NYTF_PATHS_OUT_DIR")
	overlay(&c.Cleaning.FareMin, file.Cleaning.FareMin, "NYTF_CLEANING_FARE_MIN")
	overlay(&c.Cleaning.FareMax, file.Cleaning.FareMax, "NYTF_CLEANING_FARE_MAX")
	overlay(&c.Cleaning.LatMin, file.Cleaning.LatMin, "NYTF_CLEANING_LAT_MIN")
	overlay(&c.Cleaning.LatMax, file.Cleaning.LatMax, "NYTF_CLEANING_LAT_MAX")
	overlay(&c.Cleaning.LonMin, file.Cleaning.LonMin, "NYTF_CLEANING_LON_MIN")
	overlay(&c.Cleaning.LonMax, file.Cleaning.LonMax, "NYTF_CLEANING_LON_MAX")
	overlay(&c.Features.Timezone, file.Features.Timezone, "NYTF_FEATURES_TIMEZONE")
	overlay(&c.Features.BusinessFlags, file.Features.BusinessFlags, "NYTF_FEATURES_BUSINESS_FLAGS")
	overlay(&c.Features.CyclicHour, file.Features.CyclicHour, "NYTF_FEATURES_CYCLIC_HOUR")
	overlay(&c.Features.GeoDistances, file.Features.GeoDistances, "NYTF_FEATURES_GEO_DISTANCES")
	overlay(&c.Features.AngleUnit, file.Features.AngleUnit, "NYTF_FEATURES_ANGLE_UNIT")
	overlay(&c.Features.SphereRadiusKm, file.Features.SphereRadiusKm, "NYTF_FEATURES_SPHERE_RADIUS_KM")
	overlay(&c.Features.PlaneRotation, file.Features.PlaneRotation, "NYTF_FEATURES_PLANE_ROTATION")
	overlay(&c.Features.HolidayScores, file.Features.HolidayScores, "NYTF_FEATURES_HOLIDAY_SCORES")
	overlay(&c.Features.HolidayState, file.Features.HolidayState, "NYTF_FEATURES_HOLIDAY_STATE")
	overlay(&c.Features.Workers, file.Features.Workers, "NYTF_FEATURES_WORKERS")
	if len(file.Features.TemporalFeatures) > 0 && !envSet("NYTF_FEATURES_TEMPORAL_FEATURES") {
		c.Features.TemporalFeatures = file.Features.TemporalFeatures
	}
}

func overlay[T any](dst *T, src *T, envVar string) {
	if src == nil || envSet(envVar) {
		return
	}
	*dst = *src
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// RawPath resolves a file name inside the raw data directory.
func (c *Config) RawPath(name string) string {
	return filepath.Join(c.Paths.RawDir, name)
}

// OutPath resolves a file name inside the processed data directory.
func (c *Config) OutPath(name string) string {
	return filepath.Join(c.Paths.OutDir, name)
}

// EnsureDirectories creates the output and log directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutDir, filepath.Dir(c.Logging.FilePath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
