package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

// parameterFile is the on-disk shape of a parameter file. Everything is
// optional; missing values keep the workstation defaults.
type parameterFile struct {
	Volume      *float64          `yaml:"volume"`
	Speed       *float64          `yaml:"speed"`
	Instruments []instrumentEntry `yaml:"instruments"`
	Mute        []string          `yaml:"mute"`
	Templates   map[string]any    `yaml:"templates"`
}

type instrumentEntry struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Enabled *bool  `yaml:"enabled"` // nil means enabled
}

// ExpandPath expands a leading ~ and environment variables in path
func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	return os.ExpandEnv(p), nil
}

// LoadParameters reads a YAML parameter file on top of the default parameters
func LoadParameters(path string) (*models.ParameterSet, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}

	params, err := ParseParameters(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return params, nil
}

// ParseParameters decodes YAML parameters on top of DefaultParameterSet.
//
// Template keys may be written bare ("space") or as full tokens ("{{space}}").
// Template values may be any scalar and are kept as text.
func ParseParameters(data []byte) (*models.ParameterSet, error) {
	var file parameterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse parameters: %w", err)
	}

	params := models.DefaultParameterSet()

	if file.Volume != nil {
		if *file.Volume < 0 {
			return nil, fmt.Errorf("volume must be >= 0, got %v", *file.Volume)
		}
		params.Volume = *file.Volume
	}
	if file.Speed != nil {
		params.Speed = *file.Speed
	}

	for _, entry := range file.Instruments {
		if entry.ID == "" {
			return nil, fmt.Errorf("instrument entry without id")
		}
		enabled := entry.Enabled == nil || *entry.Enabled
		params.SetInstrumentEnabled(entry.ID, enabled)
		if entry.Label != "" {
			setLabel(params, entry.ID, entry.Label)
		}
	}

	for _, id := range file.Mute {
		params.SetInstrumentEnabled(id, false)
	}

	for key, value := range file.Templates {
		token := key
		if !strings.HasPrefix(key, "{{") {
			token = models.Placeholder(key)
		}
		if value == nil {
			params.Templates[token] = ""
			continue
		}
		params.Templates[token] = fmt.Sprint(value)
	}

	return params, nil
}

func setLabel(params *models.ParameterSet, id, label string) {
	for i := range params.Instruments {
		if params.Instruments[i].ID == id {
			params.Instruments[i].Label = label
			return
		}
	}
}
