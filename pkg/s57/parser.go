package s57

import (
	"fmt"
	"os"

	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/systems"
)

// Parser parses S-57 Electronic Navigational Chart files into Datasets.
type Parser interface {
	// ParseFile reads an S-57 base cell (.000) or update file from disk.
	//
	// When opts.ApplyUpdates is true (the default), ParseFile also discovers
	// and applies every sequential update file (.001, .002, ...) found
	// alongside the base cell before building the returned Dataset.
	ParseFile(path string, opts ParseOptions, traversal TraversalOptions) (*Dataset, error)

	// ParseBytes parses a single S-57 file already in memory. Unlike
	// ParseFile it never discovers update files, since there's no directory
	// to search - ApplyUpdates is ignored.
	ParseBytes(data []byte, opts ParseOptions, traversal TraversalOptions) (*Dataset, error)
}

// NewParser returns a Parser using the standard S-57 Edition 3.1 field
// schema, with the anomalies internal/ddr.DefaultOverrideSchema documents.
func NewParser() Parser {
	return &parser{schema: ddr.DefaultOverrideSchema()}
}

type parser struct {
	schema *ddr.OverrideSchema
}

func (p *parser) ParseBytes(data []byte, opts ParseOptions, traversal TraversalOptions) (*Dataset, error) {
	world, err := systems.Build(data, p.schema, opts.buildOptions())
	if err != nil {
		return nil, fmt.Errorf("s57: %w", err)
	}
	return Build(world, traversal)
}

func (p *parser) ParseFile(path string, opts ParseOptions, traversal TraversalOptions) (*Dataset, error) {
	base, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("s57: read %s: %w", path, err)
	}

	world, err := systems.Build(base, p.schema, opts.buildOptions())
	if err != nil {
		return nil, fmt.Errorf("s57: %s: %w", path, err)
	}

	if opts.ApplyUpdates {
		updates, err := FindUpdateFiles(path)
		if err != nil {
			return nil, fmt.Errorf("s57: discover updates for %s: %w", path, err)
		}
		for _, updatePath := range updates {
			updateData, err := os.ReadFile(updatePath)
			if err != nil {
				return nil, fmt.Errorf("s57: read update %s: %w", updatePath, err)
			}
			if err := systems.BuildInto(world, updateData, p.schema, opts.buildOptions()); err != nil {
				return nil, fmt.Errorf("s57: apply update %s: %w", updatePath, err)
			}
		}
	}

	return Build(world, traversal)
}
