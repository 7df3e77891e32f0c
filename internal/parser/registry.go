package parser

import (
	"fmt"
	"strings"
)

// Registry holds all available importers and provides auto-detection.
type Registry struct {
	importers []Importer
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		importers: []Importer{
			NewCSVImporter(),
			NewClassroomImporter(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new importer to the registry.
func (r *Registry) Register(p Importer) {
	r.importers = append(r.importers, p)
}

// FindImporter detects the correct importer for a file.
func (r *Registry) FindImporter(filePath string) (Importer, error) {
	for _, p := range r.importers {
		can, err := p.CanImport(filePath)
		if err != nil {
			continue
		}
		if can {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no suitable importer found for file: %s", filePath)
}

// GetImporterByName returns an importer by its name.
func (r *Registry) GetImporterByName(name string) (Importer, error) {
	name = strings.ToLower(name)
	for _, p := range r.importers {
		if strings.ToLower(p.Name()) == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("importer not found: %s", name)
}
