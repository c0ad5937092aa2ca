// Package templates provides the embedded base question banks, one per interview domain.
package templates

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/interview-agent/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed banks.yaml
var banksYAML []byte

// BankQuestion is one generic question of a base bank.
type BankQuestion struct {
	Prompt     string           `yaml:"prompt" json:"prompt"`
	Competency types.Competency `yaml:"competency" json:"competency"`
}

// Template is a domain's base bank. Reserve questions only fill a plan that
// the bank and the profile signals leave short of its cap.
type Template struct {
	ID          string         `yaml:"id" json:"id"`
	Label       string         `yaml:"label" json:"label"`
	Description string         `yaml:"description" json:"description"`
	Questions   []BankQuestion `yaml:"questions" json:"questions"`
	Reserve     []BankQuestion `yaml:"reserve,omitempty" json:"reserve,omitempty"`
}

type bankFile struct {
	Templates []Template `yaml:"templates"`
}

var (
	loadOnce  sync.Once
	loaded    []Template
	loadError error
)

// Parse decodes a bank file. It fails when the file declares no templates or a
// template has no id.
func Parse(data []byte) ([]Template, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question banks: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("question banks declare no templates")
	}
	for i, t := range file.Templates {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("template %d has no id", i)
		}
	}
	return file.Templates, nil
}

// All returns the embedded templates in declaration order.
func All() []Template {
	loadOnce.Do(func() {
		loaded, loadError = Parse(banksYAML)
	})
	if loadError != nil {
		panic(fmt.Sprintf("embedded question banks are invalid: %v", loadError))
	}
	out := make([]Template, len(loaded))
	copy(out, loaded)
	return out
}

// Lookup finds a template by id or label, case-insensitively. Unknown domains
// fall back to the first template.
func Lookup(domain string) Template {
	all := All()
	key := strings.ToLower(strings.TrimSpace(domain))
	for _, t := range all {
		if strings.ToLower(t.ID) == key || strings.ToLower(t.Label) == key {
			return t
		}
	}
	return all[0]
}

// Known reports whether domain names an embedded template.
func Known(domain string) bool {
	key := strings.ToLower(strings.TrimSpace(domain))
	for _, t := range All() {
		if strings.ToLower(t.ID) == key || strings.ToLower(t.Label) == key {
			return true
		}
	}
	return false
}

// Domains returns the template ids in declaration order.
func Domains() []string {
	all := All()
	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	return ids
}
