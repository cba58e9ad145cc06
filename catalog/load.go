package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"rowlly_listings/models"
)

//go:embed sample.yaml
var sampleYAML []byte

// Document is the on-disk shape of a catalog file.
type Document struct {
	Agents     []models.Agent    `yaml:"agents" json:"agents"`
	Properties []models.Property `yaml:"properties" json:"properties"`
}

// Decode reads a YAML catalog document and builds a catalog from it.
func Decode(r io.Reader) (*Catalog, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return New(nil, nil)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Properties, doc.Agents)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Sample returns the brokerage's built-in demo catalog.
func Sample() *Catalog {
	c, err := Decode(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// FileSource reloads the catalog from a YAML file on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	return LoadFile(s.Path)
}

// SampleSource serves the embedded catalog.
var SampleSource = SourceFunc(func(ctx context.Context) (*Catalog, error) {
	return Sample(), nil
})

// Encode writes c as a YAML catalog document that Decode reads back.
func Encode(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Agents: c.Agents(), Properties: c.Properties()}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
