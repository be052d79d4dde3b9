package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blockberries/witness/pkg/format"
	"github.com/blockberries/witness/pkg/registryio"
)

// Format selects the textual encoding an Extractor writes.
type Format int

const (
	// FormatYAML writes the registry as YAML.
	FormatYAML Format = iota
	// FormatJSON writes the registry as JSON.
	FormatJSON
)

// Extractor discovers format.Registry entries from Go packages by static
// analysis.
type Extractor struct {
	loader *PackageLoader
}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		loader: NewPackageLoader(),
	}
}

// ExtractorConfig configures the extraction process.
type ExtractorConfig struct {
	Config     *Config  // Type collector configuration
	Patterns   []string // Go package patterns to load
	OutputPath string   // Output file path (empty for stdout)
	Format     Format   // Output encoding
}

// Extract builds a registry from the Go packages matching cfg.Patterns.
func (e *Extractor) Extract(cfg *ExtractorConfig) (*format.Registry, error) {
	pkgs, err := e.loader.Load(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched patterns: %v", cfg.Patterns)
	}

	collectorCfg := cfg.Config
	if collectorCfg == nil {
		collectorCfg = DefaultConfig()
	}
	collector := NewTypeCollector(pkgs, collectorCfg)
	if err := collector.Collect(); err != nil {
		return nil, fmt.Errorf("failed to collect types: %w", err)
	}

	builder := NewRegistryBuilder(collector.Types(), collector.Interfaces(), collector.Enums())
	reg, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	return reg, nil
}

// ExtractAndWrite extracts a registry and writes it to the configured
// output, creating any missing parent directories.
func (e *Extractor) ExtractAndWrite(cfg *ExtractorConfig) error {
	reg, err := e.Extract(cfg)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var data []byte
	switch cfg.Format {
	case FormatJSON:
		data, err = registryio.MarshalJSON(reg)
	default:
		data, err = registryio.MarshalYAML(reg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	_, err = out.Write(data)
	return err
}

// ExtractToString is a convenience function that extracts a registry and
// renders it as YAML.
func ExtractToString(patterns []string, config *Config) (string, error) {
	extractor := NewExtractor()
	reg, err := extractor.Extract(&ExtractorConfig{
		Config:   config,
		Patterns: patterns,
	})
	if err != nil {
		return "", err
	}
	data, err := registryio.MarshalYAML(reg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
