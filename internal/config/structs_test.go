package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Pipeline.OCR.Enabled)
	assert.Equal(t, "eng", cfg.Pipeline.OCR.Language)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"binarize level too high", func(c *Config) { c.Pipeline.Detection.BinarizeLevel = 300 }},
		{"binarize level negative", func(c *Config) { c.Pipeline.Detection.BinarizeLevel = -1 }},
		{"ocr without language", func(c *Config) { c.Pipeline.OCR.Language = "" }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSec = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsDisabledOCRWithoutLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.OCR.Enabled = false
	cfg.Pipeline.OCR.Language = ""
	assert.NoError(t, cfg.Validate())
}

func TestToAnalyzerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.OCR.Enabled = false

	ac := cfg.ToAnalyzerConfig()
	assert.False(t, ac.OCREnabled)
	assert.NotEmpty(t, ac.Strategies)
}

func TestNewRectangleFinder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Detection.BinarizeLevel = 200
	cfg.Pipeline.Detection.BlurSigma = 2.5

	f := cfg.NewRectangleFinder()
	require.NotNil(t, f)
	assert.Equal(t, uint8(200), f.BinarizeLevel)
	assert.InDelta(t, 2.5, f.BlurSigma, 1e-9)
}
