package reference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk layout of a reference data file.
type Document struct {
	Trucks []domain.TruckType  `yaml:"trucks"`
	States []domain.StateRules `yaml:"states"`
}

// Decode parses a reference document. Unknown keys are rejected so a typo in
// a limit name does not silently become a zero.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("decode reference document: %w", err)
	}
	return doc, nil
}

// ReadFile loads and decodes a reference document from disk.
func ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read reference file %q: %w", path, err)
	}
	doc, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("read reference file %q: %w", path, err)
	}
	return doc, nil
}

// YAMLSource serves reference data from a YAML file. The file is read on
// every call; callers build their catalog once at startup.
type YAMLSource struct {
	path string
}

var _ ports.ReferenceSource = (*YAMLSource)(nil)

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) ListTruckTypes(ctx context.Context) ([]domain.TruckType, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list truck types: %w", err)
	}
	doc, err := ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("list truck types: %w", err)
	}
	return doc.Trucks, nil
}

func (s *YAMLSource) ListStateRules(ctx context.Context) ([]domain.StateRules, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list state rules: %w", err)
	}
	doc, err := ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("list state rules: %w", err)
	}
	return doc.States, nil
}
