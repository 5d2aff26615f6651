// Package config loads and holds the engine configuration: pipeline
// definitions and knowledge bases.
//
// Configuration is parsed from a YAML or JSON document, validated for
// structural integrity, and published through a Store snapshot that reloads
// replace atomically. A poll-based Watcher triggers reloads on file change.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/pipeflow/types"
)

// Document is the parsed configuration document.
type Document struct {
	// Pipelines contains every loaded pipeline definition
	Pipelines []types.PipelineDefinition `json:"pipelines" yaml:"pipelines"`
	// KnowledgeBases maps source names to their raw entries
	KnowledgeBases map[string][]types.KnowledgeEntry `json:"knowledgeBases" yaml:"knowledgeBases"`
}

// Load reads and parses a configuration file. YAML is a superset of JSON,
// so both formats are accepted.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks structural integrity: non-empty unique pipeline names
// (case-insensitive) and non-empty unique node ids per pipeline. Node
// types and type-specific config fields are checked at run time so a
// single malformed node does not block unrelated pipelines from loading.
func (d *Document) Validate() error {
	seenPipelines := make(map[string]struct{}, len(d.Pipelines))
	for i, p := range d.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("pipeline %d has no name", i)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seenPipelines[key]; dup {
			return fmt.Errorf("duplicate pipeline name %q", p.Name)
		}
		seenPipelines[key] = struct{}{}

		seenNodes := make(map[string]struct{}, len(p.Nodes))
		for _, n := range p.Nodes {
			if n.ID == "" {
				return fmt.Errorf("pipeline %q has a node without id", p.Name)
			}
			if _, dup := seenNodes[n.ID]; dup {
				return fmt.Errorf("pipeline %q has duplicate node id %q", p.Name, n.ID)
			}
			seenNodes[n.ID] = struct{}{}
		}
	}
	return nil
}
