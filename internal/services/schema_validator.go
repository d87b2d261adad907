package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"eventops/internal/common"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"
)

// SchemaValidator checks item attribute payloads against the versioned schema
// they reference. Compiled validators are cached per schema id; schemas are
// immutable so entries never go stale, but Invalidate exists for tests.
type SchemaValidator interface {
	Validate(ctx context.Context, schemaID uuid.UUID, attributes map[string]any) error
	Invalidate(schemaID uuid.UUID)
}

type schemaValidator struct {
	schemaRepo repositories.AttributeSchemaRepository

	mu       sync.RWMutex
	compiled map[uuid.UUID]*jsonschema.Schema
	group    singleflight.Group
}

func NewSchemaValidator(schemaRepo repositories.AttributeSchemaRepository) SchemaValidator {
	return &schemaValidator{
		schemaRepo: schemaRepo,
		compiled:   make(map[uuid.UUID]*jsonschema.Schema),
	}
}

func (v *schemaValidator) Validate(ctx context.Context, schemaID uuid.UUID, attributes map[string]any) error {
	schema, err := v.compiledFor(ctx, schemaID)
	if err != nil {
		return err
	}

	// The compiled schema expects a decoded JSON value; map[string]any from a
	// bound request body already is one.
	if err := schema.Validate(map[string]any(attributes)); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			leaf := leafCause(verr)
			return &common.AttributesInvalidError{
				Message: leaf.Message,
				Path:    instancePath(leaf.InstanceLocation),
			}
		}
		return &common.AttributesInvalidError{Message: err.Error()}
	}
	return nil
}

func (v *schemaValidator) Invalidate(schemaID uuid.UUID) {
	v.mu.Lock()
	delete(v.compiled, schemaID)
	v.mu.Unlock()
}

// compiledFor returns the cached validator for schemaID, compiling at most once
// per key even under concurrent first requests.
func (v *schemaValidator) compiledFor(ctx context.Context, schemaID uuid.UUID) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[schemaID]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	result, err, _ := v.group.Do(schemaID.String(), func() (any, error) {
		v.mu.RLock()
		cached, ok := v.compiled[schemaID]
		v.mu.RUnlock()
		if ok {
			return cached, nil
		}

		record, err := v.schemaRepo.GetByID(ctx, schemaID)
		if err != nil {
			return nil, err
		}

		compiled, err := compileDefinition(schemaID, record.Definition)
		if err != nil {
			return nil, common.Validationf("schema %s does not compile: %v", schemaID, err)
		}

		v.mu.Lock()
		v.compiled[schemaID] = compiled
		v.mu.Unlock()
		return compiled, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*jsonschema.Schema), nil
}

func compileDefinition(schemaID uuid.UUID, definition map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(definition)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("mem://schemas/%s.json", schemaID)
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// leafCause walks to the deepest cause so the surfaced message names the actual
// violation rather than the schema root.
func leafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func instancePath(location string) string {
	if location == "" {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(location, "/"), "/", ".")
}
