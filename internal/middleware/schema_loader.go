package middleware

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	contextutils "triviaapi/internal/utils"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v2"
)

//go:embed schemas/openapi.yaml
var openAPIDocument []byte

// SchemaLoader holds the request body schemas of the OpenAPI document and the
// routes they apply to
type SchemaLoader struct {
	schemas map[string]*gojsonschema.Schema
	routes  map[string]string
}

// NewSchemaLoader creates an empty schema loader
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{
		schemas: make(map[string]*gojsonschema.Schema),
		routes:  make(map[string]string),
	}
}

// DefaultSchemaLoader loads the embedded OpenAPI document
func DefaultSchemaLoader() (*SchemaLoader, error) {
	loader := NewSchemaLoader()
	if err := loader.LoadSchemas(openAPIDocument); err != nil {
		return nil, err
	}
	return loader, nil
}

// LoadSchemas parses an OpenAPI YAML document, compiling every component schema and
// recording which request bodies reference them
func (sl *SchemaLoader) LoadSchemas(data []byte) error {
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return contextutils.WrapError(err, "failed to parse OpenAPI document as YAML")
	}

	components, ok := doc["components"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no components section found in OpenAPI document")
	}
	schemas, ok := components["schemas"].(map[interface{}]interface{})
	if !ok {
		return contextutils.ErrorWithContextf("no schemas section found in OpenAPI document")
	}

	converted, err := convertToJSONCompatible(schemas)
	if err != nil {
		return contextutils.WrapError(err, "failed to convert schemas")
	}
	jsonCompatibleSchemas := converted.(map[string]interface{})

	for name := range jsonCompatibleSchemas {
		// Wrap each schema with the full component set so $ref resolves
		completeSchemaDoc := map[string]interface{}{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"components": map[string]interface{}{
				"schemas": jsonCompatibleSchemas,
			},
			"$ref": "#/components/schemas/" + name,
		}

		schemaBytes, err := json.Marshal(completeSchemaDoc)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to marshal schema %s", name)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to load schema %s", name)
		}
		sl.schemas[name] = schema
	}

	if paths, ok := doc["paths"].(map[interface{}]interface{}); ok {
		sl.loadRoutes(paths)
	}
	return nil
}

// loadRoutes maps "METHOD /path" to the schema named by the JSON request body $ref
func (sl *SchemaLoader) loadRoutes(paths map[interface{}]interface{}) {
	for rawPath, rawItem := range paths {
		path, ok := rawPath.(string)
		if !ok {
			continue
		}
		item, ok := rawItem.(map[interface{}]interface{})
		if !ok {
			continue
		}
		for rawMethod, rawOp := range item {
			method, ok := rawMethod.(string)
			if !ok {
				continue
			}
			ref := lookupString(rawOp, "requestBody", "content", "application/json", "schema", "$ref")
			if ref == "" {
				continue
			}
			sl.routes[routeKey(method, path)] = strings.TrimPrefix(ref, "#/components/schemas/")
		}
	}
}

// lookupString walks nested YAML maps by key and returns the string at the end, or ""
func lookupString(node interface{}, keys ...string) string {
	for _, key := range keys {
		m, ok := node.(map[interface{}]interface{})
		if !ok {
			return ""
		}
		node = m[key]
	}
	s, _ := node.(string)
	return s
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// convertToJSONCompatible converts YAML maps to JSON maps and rewrites OpenAPI
// `nullable: true` into a JSON schema that also accepts null
func convertToJSONCompatible(data interface{}) (interface{}, error) {
	switch v := data.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{})
		hasNullable := false

		for k, val := range v {
			keyStr, ok := k.(string)
			if !ok {
				return nil, contextutils.ErrorWithContextf("key is not a string: %v", k)
			}

			if keyStr == "nullable" {
				if nullable, ok := val.(bool); ok && nullable {
					hasNullable = true
				}
				continue
			}

			convertedVal, err := convertToJSONCompatible(val)
			if err != nil {
				return nil, err
			}
			result[keyStr] = convertedVal
		}

		if hasNullable {
			if ref, hasRef := result["$ref"].(string); hasRef {
				result["oneOf"] = []interface{}{
					map[string]interface{}{"$ref": ref},
					map[string]interface{}{"type": "null"},
				}
				delete(result, "$ref")
			} else if typeVal, hasType := result["type"].(string); hasType {
				result["type"] = []interface{}{typeVal, "null"}
			}
		}

		return result, nil
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			convertedVal, err := convertToJSONCompatible(val)
			if err != nil {
				return nil, err
			}
			result[i] = convertedVal
		}
		return result, nil
	default:
		return data, nil
	}
}

// SchemaNames returns the loaded schema names in sorted order
func (sl *SchemaLoader) SchemaNames() []string {
	names := make([]string, 0, len(sl.schemas))
	for name := range sl.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Routes returns the documented "METHOD /path" keys in sorted order
func (sl *SchemaLoader) Routes() []string {
	routes := make([]string, 0, len(sl.routes))
	for route := range sl.routes {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// DetermineRequestSchema returns the schema name for a route pattern, or "" when the
// route has no documented body
func (sl *SchemaLoader) DetermineRequestSchema(method, routePath string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return sl.routes[routeKey(method, routePath)]
	}
	return ""
}

// ValidateJSON validates a raw JSON document against a schema. Malformed JSON is
// INVALID_INPUT and a schema mismatch is VALIDATION_FAILED.
func (sl *SchemaLoader) ValidateJSON(body []byte, schemaName string) error {
	schema, exists := sl.schemas[schemaName]
	if !exists {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	if !json.Valid(body) {
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"request body is not valid JSON", "")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"request body could not be validated", err.Error(), err)
	}

	if !result.Valid() {
		validationErrors := make([]string, 0, len(result.Errors()))
		for _, validationErr := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.NewAppError(contextutils.ErrorCodeValidationFailed, contextutils.SeverityWarn,
			"schema validation failed", strings.Join(validationErrors, "; "))
	}

	return nil
}
