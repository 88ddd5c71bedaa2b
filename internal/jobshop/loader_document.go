package jobshop

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed problem.schema.json
var problemSchemaJSON string

var problemSchema = jsonschema.MustCompileString("problem.schema.json", problemSchemaJSON)

// parseDocument разбирает YAML или JSON (JSON — подмножество YAML):
//
//	J1: [[M3, 2], [M2, 3]]
//	J2: [{machine: M2, duration: 4}]
//
// Порядок работ сохраняется таким, как в документе.
func parseDocument(data []byte) ([]Job, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, formatErr("", -1, "parse document: %v", err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc jobDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, formatErr("", -1, "decode document: %v", err)
	}
	return doc.jobs, nil
}

func validateDocument(raw any) error {
	buf, err := json.Marshal(toJSONValue(raw))
	if err != nil {
		return formatErr("", -1, "convert document: %v", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return formatErr("", -1, "convert document: %v", err)
	}
	if err := problemSchema.Validate(doc); err != nil {
		return formatErr("", -1, "schema: %v", err)
	}
	return nil
}

// toJSONValue приводит ключи map[any]any (например, числовые id работ в YAML) к строкам.
func toJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = toJSONValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = toJSONValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = toJSONValue(val)
		}
		return out
	default:
		return v
	}
}

type jobDocument struct {
	jobs []Job
}

func (d *jobDocument) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: problem must be a mapping of job id to operations", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var ops []Operation
		if err := val.Decode(&ops); err != nil {
			return fmt.Errorf("job %q: %w", key.Value, err)
		}
		d.jobs = append(d.jobs, Job{ID: key.Value, Ops: ops})
	}
	return nil
}

// UnmarshalYAML принимает пару [machine, duration] или {machine, duration}.
func (op *Operation) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: operation must be a [machine, duration] pair", value.Line)
		}
		op.Machine = value.Content[0].Value
		return value.Content[1].Decode(&op.Duration)
	case yaml.MappingNode:
		var aux struct {
			Machine  yaml.Node `yaml:"machine"`
			Duration int       `yaml:"duration"`
		}
		if err := value.Decode(&aux); err != nil {
			return err
		}
		op.Machine, op.Duration = aux.Machine.Value, aux.Duration
		return nil
	default:
		return fmt.Errorf("line %d: operation must be a sequence or a mapping", value.Line)
	}
}
