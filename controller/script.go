// File: controller/script.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scripted swap sequences. A script is a YAML list of (delay, path) steps;
// delays are Go duration strings.

package controller

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML duration-string decoding.
type Duration time.Duration

// UnmarshalYAML decodes "2s", "300ms" and similar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Step is one scripted swap: wait Delay, then load and publish Path.
type Step struct {
	Delay Duration `yaml:"delay"`
	Path  string   `yaml:"path"`
}

// Script is an ordered swap sequence.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// ParseScript decodes a YAML script document.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// LoadScript reads and decodes a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return ParseScript(data)
}
