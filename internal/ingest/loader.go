// Package ingest reads already-collected cost and utilization samples from files.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// Format is the encoding of a sample file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from the file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported sample file extension %q", filepath.Ext(path))
	}
}

// LoadCosts reads a list of cost data points from a JSON or YAML file
func LoadCosts(path string) ([]cost.CostDataPoint, error) {
	var samples []cost.CostDataPoint
	if err := decodeFile(path, &samples); err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []cost.CostDataPoint{}
	}
	return samples, nil
}

// LoadUtilization reads a list of utilization records from a JSON or YAML file
func LoadUtilization(path string) ([]cost.ResourceUtilization, error) {
	var records []cost.ResourceUtilization
	if err := decodeFile(path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []cost.ResourceUtilization{}
	}
	return records, nil
}

func decodeFile(path string, out interface{}) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := Decode(data, format, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Decode unmarshals data in the given format into out. Empty input leaves out untouched.
func Decode(data []byte, format Format, out interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(out)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(out)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
