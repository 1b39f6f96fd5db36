package wiretest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wiretest/wiretest/pkg/wiretest/matcher"
	"github.com/wiretest/wiretest/pkg/wiretest/path"
	"github.com/wiretest/wiretest/pkg/wiretest/template"
)

// Context is the per-test-run state the core evaluates against: a
// named-variable table plus the run's validation-matcher registry.
// Assignment actions write variables; everything in this module only
// reads them.
//
// Context is safe for concurrent use. A structured value reachable
// from a variable must not be mutated while an expression traverses
// it; that is the caller's responsibility.
type Context struct {
	id       string
	mu       sync.RWMutex
	vars     map[string]any
	matchers *matcher.Registry
	expander *template.Expander
}

// Compile-time capability check: a Context is a path-expression root.
var _ path.Variables = (*Context)(nil)

// NewContext creates a context for one test run. An empty id gets a
// generated one.
func NewContext(id string) *Context {
	if id == "" {
		id = "run-" + uuid.New().String()[:8]
	}
	return &Context{
		id:       id,
		vars:     make(map[string]any),
		matchers: matcher.NewRegistry(),
		expander: template.NewExpander(template.WithMissingAction(template.MissingError)),
	}
}

// ID returns the run identifier.
func (c *Context) ID() string {
	return c.id
}

// SetVariable binds a variable name to a value, replacing any prior
// binding.
func (c *Context) SetVariable(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[name] = value
}

// Variable implements path.Variables.
func (c *Context) Variable(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vars[name]
	return v, ok
}

// Variables returns a copy of the variable table.
func (c *Context) Variables() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make(map[string]any, len(c.vars))
	for k, v := range c.vars {
		copied[k] = v
	}
	return copied
}

// Matchers returns the run's validation-matcher registry.
func (c *Context) Matchers() *matcher.Registry {
	return c.matchers
}

// Evaluate resolves a path expression against this context and
// returns the final value.
func (c *Context) Evaluate(expression string) (any, error) {
	return path.Evaluate(expression, path.VariablesRoot(c))
}

// EvaluateAll resolves a path expression against this context and
// returns every segment in order.
func (c *Context) EvaluateAll(expression string) ([]path.Segment, error) {
	return path.EvaluateAll(expression, path.VariablesRoot(c))
}

// ReplaceDynamicContent expands ${path.expression} placeholders in s
// against this context's variables. Unresolvable placeholders are an
// error.
func (c *Context) ReplaceDynamicContent(s string) (string, error) {
	return c.expander.Expand(s, path.VariablesRoot(c))
}
