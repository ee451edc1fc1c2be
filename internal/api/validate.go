package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"checklist/internal/services"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Operation names, also used as schema identifiers.
const (
	OpCreateTodo           = "createTodo"
	OpGetTodos             = "getTodos"
	OpUpdateTodoCompletion = "updateTodoCompletion"
	OpDeleteTodo           = "deleteTodo"
)

var schemaFileByOperation = map[string]string{
	OpCreateTodo:           "schemas/create_todo.json",
	OpGetTodos:             "schemas/get_todos.json",
	OpUpdateTodoCompletion: "schemas/update_todo_completion.json",
	OpDeleteTodo:           "schemas/delete_todo.json",
}

const schemaBaseURL = "https://checklist.local/"

// ValidationError reports an input that does not satisfy its operation schema.
type ValidationError struct {
	Operation string
	Path      string
	Message   string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteByte(' ')
	}
	b.WriteString("input")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is lets callers match with errors.Is(err, services.ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == services.ErrValidation
}

var compiledSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	for _, file := range schemaFileByOperation {
		data, err := schemaFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		if err := compiler.AddResource(schemaBaseURL+file, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", file, err)
		}
	}
	out := make(map[string]*jsonschema.Schema, len(schemaFileByOperation))
	for op, file := range schemaFileByOperation {
		schema, err := compiler.Compile(schemaBaseURL + file)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		out[op] = schema
	}
	return out, nil
})

// ValidateRaw checks a raw JSON payload against the schema of operation.
func ValidateRaw(operation string, data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &ValidationError{Operation: operation, Message: "request body is required"}
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return &ValidationError{Operation: operation, Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return &ValidationError{Operation: operation, Message: "malformed JSON: trailing data after object"}
	}
	return validateDocument(operation, doc)
}

// validateValue marshals a typed input and validates the resulting document.
func validateValue(operation string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s input: %w", operation, err)
	}
	return ValidateRaw(operation, data)
}

func validateDocument(operation string, doc any) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[operation]
	if !ok {
		return fmt.Errorf("no schema registered for operation %q", operation)
	}
	if err := schema.Validate(doc); err != nil {
		return mapSchemaError(operation, err)
	}
	return nil
}

func mapSchemaError(operation string, err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Operation: operation, Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &ValidationError{
		Operation: operation,
		Path:      fieldPath(leaf),
		Message:   leaf.Message,
	}
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

var quotedName = regexp.MustCompile(`['"]([^'"]+)['"]`)

// fieldPath turns the instance location of a schema error into a dotted field
// path. Errors raised on the enclosing object (missing or unexpected
// properties) name the field in the message instead, so it is lifted from there.
func fieldPath(err *jsonschema.ValidationError) string {
	path := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
	keyword := err.KeywordLocation
	if strings.HasSuffix(keyword, "/required") || strings.HasSuffix(keyword, "/additionalProperties") {
		if match := quotedName.FindStringSubmatch(err.Message); match != nil {
			if path == "" {
				return match[1]
			}
			return path + "." + match[1]
		}
	}
	return path
}

// DecodeCreateTodo validates and decodes a raw createTodo payload.
func DecodeCreateTodo(data []byte) (CreateTodoInput, error) {
	var in CreateTodoInput
	err := decodeValidated(OpCreateTodo, data, &in)
	return in, err
}

// DecodeUpdateTodoCompletion validates and decodes a raw updateTodoCompletion payload.
func DecodeUpdateTodoCompletion(data []byte) (UpdateTodoCompletionInput, error) {
	var in UpdateTodoCompletionInput
	err := decodeValidated(OpUpdateTodoCompletion, data, &in)
	return in, err
}

// DecodeDeleteTodo validates and decodes a raw deleteTodo payload.
func DecodeDeleteTodo(data []byte) (DeleteTodoInput, error) {
	var in DeleteTodoInput
	err := decodeValidated(OpDeleteTodo, data, &in)
	return in, err
}

// ValidateGetTodos validates a raw getTodos payload, which must be an empty object.
func ValidateGetTodos(data []byte) error {
	return ValidateRaw(OpGetTodos, data)
}

func decodeValidated(operation string, data []byte, dst any) error {
	if err := ValidateRaw(operation, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &ValidationError{Operation: operation, Message: err.Error()}
	}
	return nil
}
