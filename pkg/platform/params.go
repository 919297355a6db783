package platform

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ManageExtensionAction selects what manage_extensions does with the named
// extension.
type ManageExtensionAction string

const (
	ActionEnable  ManageExtensionAction = "enable"
	ActionDisable ManageExtensionAction = "disable"
)

// Valid reports whether the action is one of the recognized values.
func (a ManageExtensionAction) Valid() bool {
	return a == ActionEnable || a == ActionDisable
}

// ListResourcesParams are the arguments of the list_resources tool.
type ListResourcesParams struct {
	ExtensionName string `json:"extension_name,omitempty" jsonschema_description:"Optional extension to list resources from. All enabled extensions are searched when omitted."`
}

// ReadResourceParams are the arguments of the read_resource tool.
type ReadResourceParams struct {
	URI           string `json:"uri" jsonschema:"required" jsonschema_description:"URI of the resource to read."`
	ExtensionName string `json:"extension_name,omitempty" jsonschema_description:"Optional extension to read the resource from. All enabled extensions are searched when omitted."`
}

// SearchToolsParams are the arguments of the search_tools tool.
type SearchToolsParams struct {
	ExtensionName string `json:"extension_name" jsonschema:"required" jsonschema_description:"Extension to filter tools by."`
	Query         string `json:"query" jsonschema:"required" jsonschema_description:"Query packed with keywords from the user's messages."`
	K             int    `json:"k,omitempty" jsonschema:"default=5" jsonschema_description:"Number of tools to return."`
}

// DefaultSearchK is the number of tools a search returns when k is omitted.
const DefaultSearchK = 5

// ManageExtensionsParams are the arguments of the manage_extensions tool.
// One value lives for exactly one orchestration run.
type ManageExtensionsParams struct {
	Action        ManageExtensionAction `json:"action" jsonschema:"required,enum=enable,enum=disable" jsonschema_description:"Whether to enable or disable the extension."`
	ExtensionName string                `json:"extension_name" jsonschema:"required" jsonschema_description:"Name of the extension to enable or disable."`
}

// schemaFor reflects a parameter struct into the JSON schema advertised in
// the tool descriptor. The reflector flags keep the output a flat object
// schema rather than a $ref forest.
func schemaFor[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		// Reflection of our own fixed types cannot produce unmarshalable
		// output; an empty object schema keeps the descriptor usable.
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

// decodeParams maps a loosely-typed argument object onto a parameter struct.
func decodeParams[T any](arguments map[string]any) (T, error) {
	var params T
	raw, err := json.Marshal(arguments)
	if err != nil {
		return params, &DeserializationError{Err: err}
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, &DeserializationError{Err: err}
	}
	return params, nil
}
