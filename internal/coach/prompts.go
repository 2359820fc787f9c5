package coach

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

//go:embed prompts/*.tmpl
var builtinPrompts embed.FS

// Prompt template names.
const (
	PromptCook    = "cook.tmpl"
	PromptFixMeal = "fixmeal.tmpl"
	PromptDoctor  = "doctor.tmpl"
	PromptMindful = "mindful.tmpl"
)

var promptNames = []string{PromptCook, PromptFixMeal, PromptDoctor, PromptMindful}

// Prompts holds the parsed prompt templates. Wording changes are a
// template edit, never a code change.
type Prompts struct {
	templates map[string]*template.Template
}

// DefaultPrompts parses the built-in templates.
func DefaultPrompts() (*Prompts, error) {
	return LoadPrompts(nil, "")
}

// LoadPrompts parses the built-in templates, replacing any that exist as
// files of the same name in dir on fsys. A nil fsys or empty dir means no
// overrides.
func LoadPrompts(fsys afero.Fs, dir string) (*Prompts, error) {
	p := &Prompts{templates: make(map[string]*template.Template, len(promptNames))}

	for _, name := range promptNames {
		src, err := fs.ReadFile(builtinPrompts, path.Join("prompts", name))
		if err != nil {
			return nil, fmt.Errorf("reading built-in prompt %s: %w", name, err)
		}

		if fsys != nil && dir != "" {
			override, err := afero.ReadFile(fsys, filepath.Join(dir, name))
			switch {
			case err == nil:
				src = override
			case !errors.Is(err, fs.ErrNotExist):
				return nil, fmt.Errorf("reading prompt override %s: %w", name, err)
			}
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parsing prompt %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Render executes the named template with data.
func (p *Prompts) Render(name string, data any) (string, error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
