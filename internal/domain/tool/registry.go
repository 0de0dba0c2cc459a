package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/llm"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// ErrToolNotFound is returned when a call names an unregistered tool.
var ErrToolNotFound = errors.New("tool not found")

// Descriptor is the public metadata of a registered tool.
type Descriptor struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	InputSchema      map[string]any   `json:"input_schema"`
	ConfirmationType ConfirmationType `json:"confirmation_type,omitempty"`
	Mutating         bool             `json:"mutating"`
}

// Registry maps tool names to implementations.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewRegistry registers tools in order. timeout bounds each invocation when positive.
func NewRegistry(log zerolog.Logger, timeout time.Duration, tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools)), timeout: timeout, log: log}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Names must be unique and confirmable tools must implement Applier.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return errors.New("nil tool")
	}
	if _, ok := t.(Applier); t.ConfirmationType() != "" && !ok {
		return fmt.Errorf("tool %s requires confirmation but cannot apply", t.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool already registered: %s", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Catalog advertises every tool to the language model in registration order.
func (r *Registry) Catalog() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.ToolFunctionSchema{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.InputSchema(),
			},
		})
	}
	return defs
}

// Descriptors lists tool metadata in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, Descriptor{
			Name:             t.Name(),
			Description:      t.Description(),
			InputSchema:      t.InputSchema(),
			ConfirmationType: t.ConfirmationType(),
			Mutating:         t.ConfirmationType() != "",
		})
	}
	return out
}

// Invoke runs the named tool. The only error returned is ErrToolNotFound; failures inside the
// tool, including panics and timeouts, come back as error results.
func (r *Registry) Invoke(ctx context.Context, tc Context, name string, args json.RawMessage) (*Result, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return r.guard(ctx, name, func(ctx context.Context) (*Result, error) {
		return t.Invoke(ctx, tc, args)
	}), nil
}

// Apply commits proposal through the named tool.
func (r *Registry) Apply(ctx context.Context, tc Context, name string, args json.RawMessage, proposal *Result) (*Result, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	applier, ok := t.(Applier)
	if !ok {
		// Tools without an apply step are re-run with the same arguments.
		return r.Invoke(ctx, tc, name, args)
	}
	return r.guard(ctx, name, func(ctx context.Context) (*Result, error) {
		return applier.Apply(ctx, tc, args, proposal)
	}), nil
}

func (r *Registry) guard(ctx context.Context, name string, fn func(context.Context) (*Result, error)) (result *Result) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("tool", name).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("tool panicked")
			result = Failure(CodeInternal, "tool %s failed unexpectedly", name)
		}
	}()

	res, err := fn(ctx)
	if err != nil {
		return r.failureFromError(name, err)
	}
	if res == nil {
		return Failure(CodeInternal, "tool %s returned no result", name)
	}
	return res
}

func (r *Registry) failureFromError(name string, err error) *Result {
	var code string
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Failure(CodeTimeout, "tool %s timed out", name)
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
		code = CodeNotFound
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		code = CodeInvalidArguments
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict):
		code = CodeConflict
	default:
		r.log.Warn().Err(err).Str("tool", name).Msg("tool invocation failed")
		return Failure(CodeInternal, "tool %s failed: %s", name, messageOf(err))
	}
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) && perr.Code != "" {
		code = perr.Code
	}
	return Failure(code, "%s", messageOf(err))
}

func messageOf(err error) string {
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}
