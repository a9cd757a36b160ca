package config

import (
	"fmt"

	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/expomap/boothfinder/internal/vision"
)

// Config represents the complete configuration for the boothfinder
// application. It covers the analyze and serve commands and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains detection and text recognition settings.
type PipelineConfig struct {
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`
	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
}

// DetectionConfig contains rectangle detection settings.
type DetectionConfig struct {
	// BinarizeLevel is the fixed binarization cutoff; 0 derives a level from
	// the image's mean luminance.
	BinarizeLevel int `mapstructure:"binarize_level" yaml:"binarize_level" json:"binarize_level"`
	// BlurSigma smooths the plan before thresholding. <= 0 disables smoothing.
	BlurSigma float64 `mapstructure:"blur_sigma" yaml:"blur_sigma" json:"blur_sigma"`
}

// OCRConfig contains text recognition settings.
type OCRConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	File        string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayPath string `mapstructure:"overlay_path" yaml:"overlay_path" json:"overlay_path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Detection: DetectionConfig{
				BinarizeLevel: 0,
				BlurSigma:     1.0,
			},
			OCR: OCRConfig{
				Enabled:  true,
				Language: "eng",
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     25,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
			OverlayEnabled:  true,
		},
	}
}

// validLogLevels are the accepted log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// validOutputFormats are the accepted output.format values.
var validOutputFormats = []string{"json", "yaml", "csv", "text"}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (valid: %v)", c.LogLevel, validLogLevels)
	}
	if c.Pipeline.Detection.BinarizeLevel < 0 || c.Pipeline.Detection.BinarizeLevel > 255 {
		return fmt.Errorf("invalid pipeline.detection.binarize_level %d (valid: 0-255)", c.Pipeline.Detection.BinarizeLevel)
	}
	if c.Pipeline.OCR.Enabled && c.Pipeline.OCR.Language == "" {
		return fmt.Errorf("pipeline.ocr.language must be set when OCR is enabled")
	}
	if !contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q (valid: %v)", c.Output.Format, validOutputFormats)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (valid: 1-65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("invalid server.max_upload_mb %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("invalid server.timeout_sec %d (must be positive)", c.Server.TimeoutSec)
	}
	return nil
}

// ToAnalyzerConfig converts the config to the internal analyzer configuration.
func (c *Config) ToAnalyzerConfig() pipeline.Config {
	return pipeline.Config{
		Strategies: pipeline.DefaultStrategies(),
		OCREnabled: c.Pipeline.OCR.Enabled,
	}
}

// NewRectangleFinder builds the configured classical detector.
func (c *Config) NewRectangleFinder() *vision.RectangleFinder {
	return &vision.RectangleFinder{
		BinarizeLevel: uint8(c.Pipeline.Detection.BinarizeLevel), //nolint:gosec // range-checked in Validate
		BlurSigma:     c.Pipeline.Detection.BlurSigma,
	}
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
