// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config holds the typed configuration of signet: the signers whose
// keys are resolved, the sources they are resolved from and where the
// allowed signers file lives. Loading goes through viper so values can come
// from the config file, environment variables or flags; saving writes the
// YAML file back directly.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/toeirei/signet/internal/model"
)

// Mutation errors. The CLI turns these into user-facing messages.
var (
	ErrSignerExists   = errors.New("signer already exists")
	ErrSignerNotFound = errors.New("signer not found")
	ErrSourceExists   = errors.New("source already exists")
	ErrSourceNotFound = errors.New("source not found")
)

// SourceInUseError reports an attempt to remove a source that a signer
// still references.
type SourceInUseError struct {
	Source string
	Signer string
}

func (e *SourceInUseError) Error() string {
	return fmt.Sprintf("source %s is still referenced by signer %s", e.Source, e.Signer)
}

// Config is the root configuration.
type Config struct {
	// AllowedSigners is the path of the allowed signers file to write. When
	// empty, the path is discovered from git configuration.
	AllowedSigners string   `mapstructure:"allowed_signers" yaml:"allowed_signers,omitempty"`
	Language       string   `mapstructure:"language" yaml:"language,omitempty"`
	Database       Database `mapstructure:"database" yaml:"database"`
	Signers        []Signer `mapstructure:"signers" yaml:"signers,omitempty"`
	Sources        []Source `mapstructure:"sources" yaml:"sources,omitempty"`
}

// Database selects the backing store for run history and key state.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// Signer is an allowed signer as configured.
type Signer struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Principals []string `mapstructure:"principals" yaml:"principals"`
	Sources    []string `mapstructure:"sources" yaml:"sources,omitempty"`
}

// Source is a key source as configured. The token, when set, authenticates
// requests to the source; it can also be supplied through the environment.
type Source struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	URL      string `mapstructure:"url" yaml:"url"`
	Token    string `mapstructure:"token" yaml:"token,omitempty"`
}

// DefaultSources returns the sources every configuration carries unless
// overridden by name: the public GitHub and GitLab instances.
func DefaultSources() []Source {
	return []Source{
		{Name: "github", Provider: string(model.ProviderGitHub), URL: "https://api.github.com"},
		{Name: "gitlab", Provider: string(model.ProviderGitLab), URL: "https://gitlab.com"},
	}
}

// defaultSignerSources is what a signer resolves from when the
// configuration names no sources.
func defaultSignerSources() []string {
	return []string{"github"}
}

// FromViper unmarshals the configuration resolved by viper, fills in
// defaults and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults adds the default sources not overridden by name and gives
// signers without explicit sources the default one.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
		c.Database.Dsn = "./signet.db"
	}
	for _, def := range DefaultSources() {
		if c.sourceByName(def.Name) == nil {
			c.Sources = append(c.Sources, def)
		}
	}
	for i := range c.Signers {
		if len(c.Signers[i].Sources) == 0 {
			c.Signers[i].Sources = defaultSignerSources()
		}
	}
}

// Validate performs semantic validation: every signer needs at least one
// principal, every referenced source must exist and every source needs a
// known provider and an absolute URL.
func (c *Config) Validate() error {
	for _, signer := range c.Signers {
		if len(signer.Principals) == 0 {
			return fmt.Errorf("Signer %s missing principals", signer.Name)
		}
	}

	var used []string
	for _, signer := range c.Signers {
		used = append(used, signer.Sources...)
	}
	if err := c.checkSourcesExist(used); err != nil {
		return err
	}

	for _, src := range c.Sources {
		if !model.Provider(src.Provider).Valid() {
			return fmt.Errorf("source %s has unknown provider %q", src.Name, src.Provider)
		}
		if u, err := url.Parse(src.URL); err != nil || !u.IsAbs() {
			return fmt.Errorf("source %s has invalid URL %q", src.Name, src.URL)
		}
	}
	return nil
}

// checkSourcesExist returns an error naming all referenced sources that are
// not configured, in sorted order.
func (c *Config) checkSourcesExist(names []string) error {
	missing := map[string]bool{}
	for _, name := range names {
		if c.sourceByName(name) == nil {
			missing[name] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sorted := make([]string, 0, len(missing))
	for name := range missing {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return fmt.Errorf("Missing sources: %s", strings.Join(sorted, ", "))
}

func (c *Config) sourceByName(name string) *Source {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i]
		}
	}
	return nil
}

func (c *Config) signerByName(name string) *Signer {
	for i := range c.Signers {
		if c.Signers[i].Name == name {
			return &c.Signers[i]
		}
	}
	return nil
}

// HasSigner reports whether a signer with the given name is configured.
func (c *Config) HasSigner(name string) bool {
	return c.signerByName(name) != nil
}

// HasSource reports whether a source with the given name is configured.
func (c *Config) HasSource(name string) bool {
	return c.sourceByName(name) != nil
}

// AddSigner adds an allowed signer. The given sources must exist; when none
// are given the default source is used.
func (c *Config) AddSigner(name string, principals, sourceNames []string) error {
	if c.HasSigner(name) {
		return ErrSignerExists
	}
	if len(principals) == 0 {
		return fmt.Errorf("Signer %s missing principals", name)
	}
	if len(sourceNames) == 0 {
		sourceNames = defaultSignerSources()
	}
	if err := c.checkSourcesExist(sourceNames); err != nil {
		return err
	}
	c.Signers = append(c.Signers, Signer{Name: name, Principals: principals, Sources: sourceNames})
	return nil
}

// RemoveSigner removes the signer with the given name.
func (c *Config) RemoveSigner(name string) error {
	for i := range c.Signers {
		if c.Signers[i].Name == name {
			c.Signers = append(c.Signers[:i], c.Signers[i+1:]...)
			return nil
		}
	}
	return ErrSignerNotFound
}

// AddSource adds a key source.
func (c *Config) AddSource(name, provider, baseURL, token string) error {
	if c.HasSource(name) {
		return ErrSourceExists
	}
	if !model.Provider(provider).Valid() {
		return fmt.Errorf("source %s has unknown provider %q", name, provider)
	}
	if u, err := url.Parse(baseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("source %s has invalid URL %q", name, baseURL)
	}
	c.Sources = append(c.Sources, Source{Name: name, Provider: provider, URL: baseURL, Token: token})
	return nil
}

// RemoveSource removes the source with the given name. A source still
// referenced by a signer cannot be removed.
func (c *Config) RemoveSource(name string) error {
	if c.sourceByName(name) == nil {
		return ErrSourceNotFound
	}
	for _, signer := range c.Signers {
		for _, src := range signer.Sources {
			if src == name {
				return &SourceInUseError{Source: name, Signer: signer.Name}
			}
		}
	}
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			c.Sources = append(c.Sources[:i], c.Sources[i+1:]...)
			return nil
		}
	}
	return ErrSourceNotFound
}

// ModelSigners converts the configured signers for resolution.
func (c *Config) ModelSigners() []model.Signer {
	signers := make([]model.Signer, 0, len(c.Signers))
	for _, s := range c.Signers {
		signers = append(signers, model.Signer{
			Name:        s.Name,
			Principals:  s.Principals,
			SourceNames: s.Sources,
		})
	}
	return signers
}

// ModelSources converts the configured sources for resolution. A token set
// in the environment takes precedence over one in the configuration file.
func (c *Config) ModelSources() []model.Source {
	sources := make([]model.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		token := s.Token
		if env := os.Getenv(TokenEnvVar(s.Name)); env != "" {
			token = env
		}
		sources = append(sources, model.Source{
			Name:     s.Name,
			Provider: model.Provider(s.Provider),
			BaseURL:  s.URL,
			Token:    token,
		})
	}
	return sources
}

// TokenEnvVar returns the environment variable consulted for a source's
// token, e.g. SIGNET_TOKEN_GITHUB for the source named github.
func TokenEnvVar(sourceName string) string {
	normalized := strings.NewReplacer("-", "_", ".", "_").Replace(sourceName)
	return "SIGNET_TOKEN_" + strings.ToUpper(normalized)
}

// Save writes the configuration as YAML. The file is created with owner
// only permissions since it may contain source tokens.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
