// Package schemacheck validates a submitted prompt value against a
// script's optional typed Schema literal before the reply is forwarded
// to the child process.
package schemacheck

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/scriptkit/launchercore/pkg/launcherrors"
	"github.com/scriptkit/launchercore/pkg/prompt"
)

// Compile turns a script's raw Schema literal (already json5/YAML
// decoded into a generic map by scriptindex) into a resolved schema
// ready for repeated Validate calls. A nil or empty schema means "no
// constraint" and Compile returns (nil, nil).
func Compile(schema map[string]any) (*jsonschema.Resolved, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, launcherrors.Wrap(launcherrors.Validation, "schemacheck", "schema literal is not valid JSON", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, launcherrors.Wrap(launcherrors.Validation, "schemacheck", "schema literal does not parse as JSON Schema", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, launcherrors.Wrap(launcherrors.Validation, "schemacheck", "schema literal failed to resolve", err)
	}
	return resolved, nil
}

// Validate checks a submitted prompt.Value against a resolved schema. A
// nil resolved schema always passes, matching an unset Schema field.
func Validate(resolved *jsonschema.Resolved, value prompt.Value) error {
	if resolved == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return launcherrors.Wrap(launcherrors.Validation, "schemacheck", "submitted value could not be re-encoded for validation", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return launcherrors.Wrap(launcherrors.Validation, "schemacheck", "submitted value could not be decoded for validation", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return launcherrors.Wrap(launcherrors.Validation, "schemacheck", "submitted value failed schema validation", err)
	}
	return nil
}
