package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResponseSchema describes the analyze response as a JSON Schema map.
func ResponseSchema() map[string]any {
	numberOrString := map[string]any{"type": []string{"number", "string", "null"}}
	stringish := map[string]any{"type": []string{"string", "null"}}
	list := map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": []string{"string", "number"}},
	}
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"item":      stringish,
			"name":      stringish,
			"brand":     stringish,
			"price":     numberOrString,
			"weight":    numberOrString,
			"ocrText":   stringish,
			"allPrices": list,
			"allItems":  list,
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
