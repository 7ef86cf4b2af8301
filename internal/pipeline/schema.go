package pipeline

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects the JSON schema of a request type
func generateSchema[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var schemas = map[string]*jsonschema.Schema{
	"pass1": generateSchema[Pass1Request](),
	"pass2": generateSchema[Pass2Request](),
}

// SchemaNames lists the request schemas Schema knows
func SchemaNames() []string {
	return []string{"pass1", "pass2"}
}

// Schema returns the JSON schema of the named request (pass1 or pass2)
func Schema(name string) (*jsonschema.Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (want pass1 or pass2)", name)
	}
	return s, nil
}
