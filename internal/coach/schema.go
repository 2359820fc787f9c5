package coach

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Schema file names.
const (
	schemaRecipePlan = "recipe_plan.json"
	schemaDiagnosis  = "diagnosis.json"
	schemaMealScore  = "meal_score.json"
)

// schemas holds the compiled response schemas, keyed by file name.
type schemas map[string]*jsonschema.Schema

func compileSchemas() (schemas, error) {
	out := make(schemas)
	for _, name := range []string{schemaRecipePlan, schemaDiagnosis, schemaMealScore} {
		data, err := schemaFiles.ReadFile(path.Join("schemas", name))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
		schema, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = schema
	}
	return out, nil
}

// decode extracts the JSON object from raw, validates it against the named
// schema, and decodes it into v.
func (s schemas) decode(name, raw string, v any) error {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(obj))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := s[name].Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
