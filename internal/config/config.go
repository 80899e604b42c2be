// Package config assembles runtime settings from defaults, an optional YAML
// file and environment variables, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/scan-overlay-mcp/internal/geometry"
	"github.com/ironsheep/scan-overlay-mcp/internal/ocr"
	"github.com/ironsheep/scan-overlay-mcp/internal/overlay"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Environment variable names.
const (
	EnvLogLevel            = "SCAN_MCP_LOG_LEVEL"
	EnvEngine              = "SCAN_MCP_ENGINE"
	EnvLanguages           = "SCAN_MCP_LANGUAGES"
	EnvLevel               = "SCAN_MCP_LEVEL"
	EnvContainer           = "SCAN_MCP_CONTAINER"
	EnvMargin              = "SCAN_MCP_MARGIN"
	EnvCorrectFilledOrigin = "SCAN_MCP_CORRECT_FILLED_ORIGIN"
	EnvTessdataPrefix      = "TESSDATA_PREFIX"
	EnvDocAIProject        = "DOCAI_PROJECT_ID"
	EnvDocAILocation       = "DOCAI_LOCATION"
	EnvDocAIProcessor      = "DOCAI_PROCESSOR_ID"
	EnvCredentials         = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Config holds every setting the server and CLI need.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Engine        string   `yaml:"engine"`
	Level         string   `yaml:"level"`
	Languages     []string `yaml:"languages"`
	MinConfidence float64  `yaml:"min_confidence"`

	// Container is the size of the view pages are aspect-fit into.
	Container geometry.Size   `yaml:"container"`
	Mapper    geometry.Mapper `yaml:"mapper"`
	Style     overlay.Style   `yaml:"style"`

	TessdataPrefix string               `yaml:"tessdata_prefix"`
	DocumentAI     ocr.DocumentAIConfig `yaml:"document_ai"`
}

// Default returns the built-in settings: Tesseract at the accurate level in
// English, a 390x844 container and the default mapper and style.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Engine:    "tesseract",
		Level:     string(ocr.LevelAccurate),
		Languages: []string{"eng"},
		Container: geometry.Size{Width: 390, Height: 844},
		Mapper:    geometry.DefaultMapper(),
		Style:     overlay.DefaultStyle(),
		DocumentAI: ocr.DocumentAIConfig{
			Location: "us",
		},
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Engine = getEnv(EnvEngine, c.Engine)
	c.Level = getEnv(EnvLevel, c.Level)
	c.TessdataPrefix = getEnv(EnvTessdataPrefix, c.TessdataPrefix)
	c.DocumentAI.ProjectID = getEnv(EnvDocAIProject, c.DocumentAI.ProjectID)
	c.DocumentAI.Location = getEnv(EnvDocAILocation, c.DocumentAI.Location)
	c.DocumentAI.ProcessorID = getEnv(EnvDocAIProcessor, c.DocumentAI.ProcessorID)
	c.DocumentAI.CredentialsFile = getEnv(EnvCredentials, c.DocumentAI.CredentialsFile)

	if v := os.Getenv(EnvLanguages); v != "" {
		c.Languages = splitList(v)
	}
	if v := os.Getenv(EnvContainer); v != "" {
		size, err := ParseSize(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvContainer, err)
		}
		c.Container = size
	}
	if v := os.Getenv(EnvMargin); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvMargin, err)
		}
		c.Mapper.Margin = m
	}
	if v := os.Getenv(EnvCorrectFilledOrigin); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvCorrectFilledOrigin, err)
		}
		c.Mapper.CorrectFilledOrigin = b
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := ocr.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Container.Width <= 0 || c.Container.Height <= 0 {
		return fmt.Errorf("%w: container must have positive width and height, got %vx%v",
			ErrInvalid, c.Container.Width, c.Container.Height)
	}
	if c.Mapper.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %v", ErrInvalid, c.Mapper.Margin)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be within [0,1], got %v", ErrInvalid, c.MinConfidence)
	}
	if err := c.Style.Validate(); err != nil {
		return fmt.Errorf("%w: style: %v", ErrInvalid, err)
	}

	switch strings.ToLower(c.Engine) {
	case "", "tesseract":
	case "docai", "documentai":
		if err := c.DocumentAI.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalid, ocr.ErrUnknownEngine, c.Engine)
	}
	return nil
}

// Recognition returns the immutable per-pass recognition configuration.
func (c Config) Recognition() ocr.Config {
	level, err := ocr.ParseLevel(c.Level)
	if err != nil {
		level = ocr.LevelAccurate
	}
	return ocr.Config{
		Level:         level,
		Languages:     append([]string(nil), c.Languages...),
		MinConfidence: c.MinConfidence,
	}
}

// EngineOptions returns the settings NewRecognizer needs.
func (c Config) EngineOptions() ocr.EngineOptions {
	return ocr.EngineOptions{
		TessdataPrefix: c.TessdataPrefix,
		DocumentAI:     c.DocumentAI,
	}
}

// ParseLogLevel converts debug, info, warn or error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
}

// ParseSize parses "WIDTHxHEIGHT", e.g. "390x844".
func ParseSize(s string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("size %q must look like WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return geometry.Size{Width: width, Height: height}, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
