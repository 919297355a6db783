// Package router implements the tool route manager backing the platform
// adapters: a searchable index of the tools belonging to enabled extensions,
// with pluggable selector backends.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/pkg/platform"
)

// Manager owns the selector and serves search dispatches. A manager built
// without a selector is reachable but not functional: index syncs are
// skipped and search submissions fail.
type Manager struct {
	selector platform.ToolSelector
}

var _ platform.ToolRouteManager = (*Manager)(nil)

// NewManager builds a route manager over the given selector, which may be
// nil for a non-functional router.
func NewManager(selector platform.ToolSelector) *Manager {
	return &Manager{selector: selector}
}

// IsRouterFunctional reports whether index updates can be served right now.
func (m *Manager) IsRouterFunctional(ctx context.Context) bool {
	return m.selector != nil
}

// RouterToolSelector returns the live selector handle, if any.
func (m *Manager) RouterToolSelector() (platform.ToolSelector, bool) {
	if m.selector == nil {
		return nil, false
	}
	return m.selector, true
}

// DispatchRouteSearchTool validates and submits a search, returning a
// pending handle whose resolution yields the result content. Validation and
// submission failures surface here; search execution failures surface on the
// handle.
func (m *Manager) DispatchRouteSearchTool(ctx context.Context, arguments map[string]any) (*platform.PendingSearch, error) {
	if m.selector == nil {
		return nil, errors.New("tool router is not functional")
	}

	params, err := decodeSearchParams(arguments)
	if err != nil {
		return nil, err
	}

	outcome := make(chan platform.SearchOutcome, 1)
	go func() {
		defer close(outcome)

		matches, err := m.selector.Search(ctx, params.ExtensionName, params.Query, params.K)
		if err != nil {
			outcome <- platform.SearchOutcome{Err: err}
			return
		}
		content, err := renderMatches(matches)
		outcome <- platform.SearchOutcome{Content: content, Err: err}
	}()

	log.Debug("search dispatched",
		"extension", params.ExtensionName, "query", params.Query, "k", params.K)
	return platform.NewPendingSearch(outcome), nil
}

func decodeSearchParams(arguments map[string]any) (platform.SearchToolsParams, error) {
	var params platform.SearchToolsParams

	raw, err := json.Marshal(arguments)
	if err != nil {
		return params, fmt.Errorf("invalid search arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, fmt.Errorf("invalid search arguments: %w", err)
	}

	if params.ExtensionName == "" {
		return params, errors.New("extension_name is required")
	}
	if params.Query == "" {
		return params, errors.New("query is required")
	}
	if params.K <= 0 {
		params.K = platform.DefaultSearchK
	}
	return params, nil
}

func renderMatches(matches []platform.ToolMatch) ([]mcp.Content, error) {
	if len(matches) == 0 {
		return []mcp.Content{mcp.NewTextContent("No matching tools were found.")}, nil
	}
	rendered, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render search results: %w", err)
	}
	return []mcp.Content{mcp.NewTextContent(string(rendered))}, nil
}
