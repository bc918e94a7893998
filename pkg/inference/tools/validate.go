package tools

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidArguments is returned when tool arguments violate the tool's
// input schema.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ValidateArguments checks args against the definition's input schema. A
// definition without a schema accepts anything.
func ValidateArguments(def ToolDefinition, args json.RawMessage) error {
	if def.InputSchema == nil {
		return nil
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	schema, err := json.Marshal(def.InputSchema)
	if err != nil {
		return errors.Wrapf(err, "could not encode schema of %s", def.Name)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(args))
	if err != nil {
		return errors.Wrapf(ErrInvalidArguments, "%s: %v", def.Name, err)
	}
	if result.Valid() {
		return nil
	}

	var descriptions []string
	for _, desc := range result.Errors() {
		descriptions = append(descriptions, desc.String())
	}
	return errors.Wrapf(ErrInvalidArguments, "%s: %s", def.Name, strings.Join(descriptions, "; "))
}
