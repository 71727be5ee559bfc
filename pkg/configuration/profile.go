package configuration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zintra/rfq-templates/pkg/rfqtemplate"
)

// Profile overrides the environment for a single run.
//
//	sentinel: Other
//	select_type: select
//	categories:
//	  - Construction & Renovation
type Profile struct {
	Sentinel   string   `yaml:"sentinel"`
	SelectType string   `yaml:"select_type"`
	Categories []string `yaml:"categories"`
}

func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) Validate() error {
	seen := make(map[string]struct{}, len(p.Categories))
	for _, c := range p.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("categories: blank label")
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("categories: duplicate label %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// NormalizeOptions merges the environment with an optional profile.
func (c *Configuration) NormalizeOptions(p *Profile) rfqtemplate.Options {
	opts := rfqtemplate.Options{
		Sentinel:   c.Templates.Sentinel,
		SelectType: c.Templates.SelectType,
	}
	if p == nil {
		return opts
	}
	if strings.TrimSpace(p.Sentinel) != "" {
		opts.Sentinel = p.Sentinel
	}
	if strings.TrimSpace(p.SelectType) != "" {
		opts.SelectType = p.SelectType
	}
	opts.Categories = append([]string(nil), p.Categories...)
	return opts
}
