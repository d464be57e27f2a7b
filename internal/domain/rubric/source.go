package rubric

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source loads the full rubric tree once per session start.
type Source interface {
	// Load returns the validated rubric or fails with ErrUnavailable.
	Load(ctx context.Context) (*Rubric, error)
}

// FileSource reads the rubric from a YAML file.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// fileDoc mirrors the YAML document shape.
type fileDoc struct {
	Steps []Step `koanf:"steps"`
}

// Load reads, parses, and validates the rubric file.
func (s *FileSource) Load(ctx context.Context) (*Rubric, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, s.path, err)
	}

	var doc fileDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrUnavailable, s.path, err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s contains no steps", ErrUnavailable, s.path)
	}

	r, err := New(doc.Steps)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SeedSource serves the built-in sales-coaching rubric.
type SeedSource struct{}

// NewSeedSource creates a source returning the embedded default rubric.
func NewSeedSource() *SeedSource {
	return &SeedSource{}
}

// Load builds the seed rubric.
func (s *SeedSource) Load(ctx context.Context) (*Rubric, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return New(seedSteps())
}
