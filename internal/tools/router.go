// Package tools maps named operations onto the statement executor.
//
// A Router publishes a static catalog of four tools (query, execute,
// executemany, executescript), validates each call's arguments against the
// same field table that produced the catalog, runs exactly one executor
// call, and packages the result as a single text content item holding the
// JSON-encoded outcome.
//
// Usage:
//
//	r := tools.NewRouter(exec)
//	content, err := r.CallTool(ctx, "query", map[string]any{"query": "SELECT 1"})
//	if errs.IsInvalidInput(err) { ... }
package tools

import (
	"context"

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/value"
)

// Executor is the statement executor the router dispatches to.
// *database.Executor satisfies it.
type Executor interface {
	RunQuery(ctx context.Context, query string, params []any) (*database.ResultSet, error)
	RunStatement(ctx context.Context, statement string, params []any) (*database.ExecResult, error)
	RunMany(ctx context.Context, statement string, paramSets [][]any) (*database.BatchResult, error)
	RunScript(ctx context.Context, script string) (*database.BatchResult, error)
}

const (
	routerName   = "sqlite"
	instructions = "SQL database access service: run queries and execute statements, batches and scripts."
)

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Capabilities advertises which surfaces the router serves.
type Capabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// Resource describes a readable resource. The router publishes none.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// Prompt describes a prompt template. The router publishes none.
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Router dispatches tool calls to an Executor.
type Router struct {
	exec Executor
}

// NewRouter returns a router over exec.
func NewRouter(exec Executor) *Router {
	return &Router{exec: exec}
}

// Name returns the name the router announces to clients.
func (r *Router) Name() string { return routerName }

// Instructions returns the usage text announced to clients.
func (r *Router) Instructions() string { return instructions }

// Capabilities reports the surfaces the router serves. Only tools are
// enabled.
func (r *Router) Capabilities() Capabilities {
	return Capabilities{Tools: true}
}

// ListTools returns the operation catalog. Each call builds fresh input
// schemas, so callers may modify the result freely.
func (r *Router) ListTools() []Tool {
	return buildCatalog(operations)
}

// CallTool validates args for the named tool and runs it.
//
// Errors:
//   - ErrKindNotFound     unknown tool name, nothing is executed
//   - ErrKindInvalidInput args fail validation, nothing is executed
//   - execution kinds     whatever the executor returned
func (r *Router) CallTool(ctx context.Context, name string, args any) ([]Content, error) {
	logger.FromContext(ctx).With().Str("tool", name).Logger().Debug("calling tool")

	op, ok := operationBy[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "unknown tool: %s", name)
	}

	a, err := validate(ctx, op.fields, args)
	if err != nil {
		return nil, err
	}

	result, err := op.run(r, a)
	if err != nil {
		return nil, err
	}

	text, err := value.Encode(result)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to encode result", err)
	}
	return []Content{{Type: "text", Text: text}}, nil
}

// ListResources returns the published resources, which is always empty.
func (r *Router) ListResources() []Resource {
	return []Resource{}
}

// ReadResource always fails with ErrKindNotFound.
func (r *Router) ReadResource(_ context.Context, uri string) (string, error) {
	return "", errs.Newf(errs.ErrKindNotFound, "resource not found: %s", uri)
}

// ListPrompts returns the published prompts, which is always empty.
func (r *Router) ListPrompts() []Prompt {
	return []Prompt{}
}

// GetPrompt always fails with ErrKindNotFound.
func (r *Router) GetPrompt(_ context.Context, name string) (string, error) {
	return "", errs.Newf(errs.ErrKindNotFound, "prompt not found: %s", name)
}
