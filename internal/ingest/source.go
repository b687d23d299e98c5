package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// Dataset is everything known about one organization's resources for an analysis run
type Dataset struct {
	OrganizationID string
	Costs          []cost.CostDataPoint
	Utilization    []cost.ResourceUtilization
}

// Source supplies datasets per organization
type Source interface {
	// Organizations lists the organizations with data available
	Organizations(ctx context.Context) ([]string, error)

	// Load reads one organization's dataset
	Load(ctx context.Context, organizationID string) (*Dataset, error)
}

// File base names looked up inside an organization directory
const (
	CostsFileBase       = "costs"
	UtilizationFileBase = "utilization"
)

var extensions = []string{".json", ".yaml", ".yml"}

// DirSource reads datasets from a directory holding one sub-directory per organization:
//
//	<root>/<organization>/costs.{json,yaml,yml}
//	<root>/<organization>/utilization.{json,yaml,yml}
//
// Either file may be absent.
type DirSource struct {
	root string
}

// NewDirSource creates a directory-backed source
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Organizations(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.root, err)
	}

	orgs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && entry.Name()[0] != '.' {
			orgs = append(orgs, entry.Name())
		}
	}
	sort.Strings(orgs)
	return orgs, nil
}

func (s *DirSource) Load(ctx context.Context, organizationID string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, organizationID)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("no data for organization %s: %w", organizationID, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", dir)
	}

	ds := &Dataset{
		OrganizationID: organizationID,
		Costs:          []cost.CostDataPoint{},
		Utilization:    []cost.ResourceUtilization{},
	}

	if path, ok := findFile(dir, CostsFileBase); ok {
		if ds.Costs, err = LoadCosts(path); err != nil {
			return nil, err
		}
	}
	if path, ok := findFile(dir, UtilizationFileBase); ok {
		if ds.Utilization, err = LoadUtilization(path); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func findFile(dir, base string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
