// Package openapi loads the OpenAPI document describing the upstream symbol
// store API. The document is used for tool descriptions only; request and
// response shapes are fixed in code and the upstream service remains the
// authority for deep validation.
package openapi

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operation holds the subset of an OpenAPI operation object the proxy reads.
type Operation struct {
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
}

// Document holds the subset of an OpenAPI document the proxy reads.
type Document struct {
	Info struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`

	// Paths maps a path template to its operations keyed by lowercase
	// HTTP method.
	Paths map[string]map[string]Operation `yaml:"paths"`

	Components struct {
		Schemas map[string]yaml.Node `yaml:"schemas"`
	} `yaml:"components"`
}

// Load reads and parses the OpenAPI document at the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	return &doc, nil
}

// Summary returns the summary of the operation at (path, method), or the
// fallback when the document, path, or operation is absent or the summary is
// empty. Safe to call on a nil Document.
func (d *Document) Summary(path, method, fallback string) string {
	if d == nil {
		return fallback
	}

	ops, ok := d.Paths[path]
	if !ok {
		return fallback
	}

	op, ok := ops[strings.ToLower(method)]
	if !ok || op.Summary == "" {
		return fallback
	}
	return op.Summary
}

// HasSchema reports whether the document defines the named component schema.
func (d *Document) HasSchema(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Components.Schemas[name]
	return ok
}
