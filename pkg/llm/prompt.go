package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptTemplate wraps a text/template loaded from disk or from a string.
type PromptTemplate struct {
	name  string
	path  string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewPromptTemplate parses the template at path using the provided template functions.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	t := &PromptTemplate{
		name:  filepath.Base(path),
		path:  path,
		funcs: funcs,
	}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewPromptTemplateFromString parses an in-memory template. Reload is a no-op
// for such templates.
func NewPromptTemplateFromString(name, text string, funcs template.FuncMap) (*PromptTemplate, error) {
	t := &PromptTemplate{name: name, funcs: funcs}
	if err := t.parse([]byte(text)); err != nil {
		return nil, err
	}
	return t, nil
}

// Name identifies the template in errors and logs.
func (t *PromptTemplate) Name() string {
	return t.name
}

// Render executes the template with the provided data and returns the rendered string.
func (t *PromptTemplate) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tmpl == nil {
		return "", fmt.Errorf("prompt template %q not parsed", t.name)
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Reload reparses the underlying file. This can be used when files change.
func (t *PromptTemplate) Reload() error {
	if t.path == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *PromptTemplate) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}
	return t.parse(data)
}

func (t *PromptTemplate) parse(data []byte) error {
	tmpl := template.New(t.name).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.name, err)
	}
	t.tmpl = tmpl
	t.hash = computeDigest(data)
	return nil
}

// Digest returns the sha256 hash of the template content.
func (t *PromptTemplate) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

func computeDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
