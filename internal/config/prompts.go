package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"ledgerlens/internal/domain"
)

// PromptTemplate is a named pair of prompts for a document kind.
type PromptTemplate struct {
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
	UserPrompt   string `yaml:"user_prompt"`
}

// PromptStore loads prompt templates from a YAML file and serves them to
// the extraction pipeline. Reload swaps the template set without a restart.
type PromptStore struct {
	path string

	mu        sync.RWMutex
	templates map[string]PromptTemplate
}

// NewPromptStore reads templates from the given YAML file.
func NewPromptStore(path string) (*PromptStore, error) {
	s := &PromptStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the template file. On error the previous template set
// stays in place.
func (s *PromptStore) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read prompts file %s: %w", s.path, err)
	}

	templates := make(map[string]PromptTemplate)
	if err := yaml.Unmarshal(raw, &templates); err != nil {
		return fmt.Errorf("parse prompts file %s: %w", s.path, err)
	}
	if len(templates) == 0 {
		return fmt.Errorf("prompts file %s contains no templates", s.path)
	}

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
	return nil
}

// Get returns the template with the given name.
func (s *PromptStore) Get(name string) (PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf(
			"template '%s' not found (available: %s): %w",
			name, strings.Join(s.namesLocked(), ", "), domain.ErrTemplateNotFound,
		)
	}
	return tpl, nil
}

// Available returns template names mapped to their descriptions.
func (s *PromptStore) Available() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.templates))
	for name, tpl := range s.templates {
		out[name] = tpl.Description
	}
	return out
}

// Names returns template names in sorted order.
func (s *PromptStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namesLocked()
}

func (s *PromptStore) namesLocked() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
