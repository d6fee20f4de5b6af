package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Presets declares the difficulty levels a quiz may be generated with and
// the per-level hints handed to the question generator.
type Presets struct {
	Difficulties map[string]*DifficultySetting `yaml:"difficulties"`
}

// DifficultySetting describes one difficulty level.
type DifficultySetting struct {
	Description string `yaml:"description"`
	Hint        string `yaml:"hint"`
}

// LoadPresets loads the difficulty presets from config/presets.yaml.
func LoadPresets() (*Presets, error) {
	return LoadPresetsFromPath(filepath.Join("config", "presets.yaml"))
}

// LoadPresetsFromPath loads the difficulty presets from a specific path.
func LoadPresetsFromPath(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	if len(p.Difficulties) == 0 {
		return nil, fmt.Errorf("presets declare no difficulties")
	}
	for name, setting := range p.Difficulties {
		if setting == nil || setting.Description == "" {
			return nil, fmt.Errorf("difficulty %s: description is required", name)
		}
	}

	return &p, nil
}

// LoadPresetsOrDefault loads presets or falls back to the compiled defaults
// if the file is absent or invalid.
func LoadPresetsOrDefault() *Presets {
	p, err := LoadPresets()
	if err != nil {
		return DefaultPresets()
	}
	return p
}

// DefaultPresets returns the compiled-in difficulty presets.
func DefaultPresets() *Presets {
	return &Presets{
		Difficulties: map[string]*DifficultySetting{
			"easy": {
				Description: "Recall-level questions with obvious distractors",
				Hint:        "Ask straightforward recall questions suitable for beginners.",
			},
			"medium": {
				Description: "Application-level questions with plausible distractors",
				Hint:        "Ask questions that require applying a concept, not just recalling it.",
			},
			"hard": {
				Description: "Multi-step reasoning questions",
				Hint:        "Ask questions requiring multi-step reasoning; distractors should reflect common mistakes.",
			},
		},
	}
}

// Valid reports whether the difficulty name is declared.
func (p *Presets) Valid(difficulty string) bool {
	_, ok := p.Difficulties[difficulty]
	return ok
}

// Hint returns the generation hint for the difficulty, or an empty string.
func (p *Presets) Hint(difficulty string) string {
	if setting, ok := p.Difficulties[difficulty]; ok && setting != nil {
		return setting.Hint
	}
	return ""
}
