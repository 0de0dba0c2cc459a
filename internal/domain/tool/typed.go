package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Tool is one invocable operation.
type Tool interface {
	Name() string
	Description() string
	// InputSchema is the JSON schema of the argument object.
	InputSchema() map[string]any
	// ConfirmationType is empty for tools that act immediately.
	ConfirmationType() ConfirmationType
	// Invoke runs the tool. Confirmable tools only compute a proposal here.
	Invoke(ctx context.Context, tc Context, args json.RawMessage) (*Result, error)
}

// Applier is implemented by confirmable tools. Apply commits a proposal previously returned by Invoke.
type Applier interface {
	Apply(ctx context.Context, tc Context, args json.RawMessage, proposal *Result) (*Result, error)
}

// Spec declares a tool over a concrete argument type A.
type Spec[A any] struct {
	Name             string
	Description      string
	ConfirmationType ConfirmationType
	Run              func(ctx context.Context, tc Context, args A) (*Result, error)
	Apply            func(ctx context.Context, tc Context, args A, proposal *Result) (*Result, error)
}

type typed[A any] struct {
	spec   Spec[A]
	schema map[string]any
}

// New builds a Tool from spec, reflecting the argument schema from A.
func New[A any](spec Spec[A]) (Tool, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, errors.New("tool name is required")
	}
	if spec.Run == nil {
		return nil, fmt.Errorf("tool %s: run function is required", spec.Name)
	}
	if spec.ConfirmationType != "" && spec.Apply == nil {
		return nil, fmt.Errorf("tool %s: confirmable tools must define apply", spec.Name)
	}
	schema, err := reflectSchema[A]()
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", spec.Name, err)
	}
	t := &typed[A]{spec: spec, schema: schema}
	if spec.Apply != nil {
		return &confirmable[A]{typed: t}, nil
	}
	return t, nil
}

// MustNew is New for static tool tables.
func MustNew[A any](spec Spec[A]) Tool {
	t, err := New(spec)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *typed[A]) Name() string                       { return t.spec.Name }
func (t *typed[A]) Description() string                { return t.spec.Description }
func (t *typed[A]) InputSchema() map[string]any        { return t.schema }
func (t *typed[A]) ConfirmationType() ConfirmationType { return t.spec.ConfirmationType }

func (t *typed[A]) Invoke(ctx context.Context, tc Context, raw json.RawMessage) (*Result, error) {
	args, failure := decodeArgs[A](raw)
	if failure != nil {
		return failure, nil
	}
	result, err := t.spec.Run(ctx, tc, args)
	if err != nil || result == nil {
		return result, err
	}
	if t.spec.ConfirmationType != "" && !result.IsError() {
		result.RequiresConfirmation = true
		result.ConfirmationType = t.spec.ConfirmationType
	}
	return result, nil
}

type confirmable[A any] struct {
	*typed[A]
}

func (t *confirmable[A]) Apply(ctx context.Context, tc Context, raw json.RawMessage, proposal *Result) (*Result, error) {
	args, failure := decodeArgs[A](raw)
	if failure != nil {
		return failure, nil
	}
	return t.spec.Apply(ctx, tc, args, proposal)
}

func decodeArgs[A any](raw json.RawMessage) (A, *Result) {
	var args A
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, Failure(CodeInvalidArguments, "arguments are not valid: %v", err)
	}
	if err := validate.Struct(args); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return args, nil
		}
		return args, Failure(CodeInvalidArguments, "%s", describeValidation(err))
	}
	return args, nil
}

func describeValidation(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		name := f.Field()
		switch f.Tag() {
		case "required", "required_without":
			parts = append(parts, fmt.Sprintf("%s is required", name))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", name, f.Param()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", name, f.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", name, f.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", name, f.Tag()))
		}
	}
	return "invalid arguments: " + strings.Join(parts, "; ")
}

func reflectSchema[A any]() (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var zero A
	schema := reflector.Reflect(&zero)
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	delete(out, "additionalProperties")
	if out["type"] != "object" {
		return nil, errors.New("arguments must be a struct")
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out, nil
}

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}
