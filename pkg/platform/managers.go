package platform

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/pkg/config"
)

// ExtensionManager is the backing component owning the registry of enabled
// extensions and their resources. The adapters sequence calls to it and
// translate outcomes; they never cache anything it returns.
type ExtensionManager interface {
	// SupportsResources reports whether any currently enabled extension
	// contributes resources.
	SupportsResources(ctx context.Context) bool

	// ListResources lists resources from the named extension, or from all
	// enabled extensions when extensionName is empty.
	ListResources(ctx context.Context, extensionName string) ([]mcp.Resource, error)

	// ReadResource resolves uri within the named extension, or across all
	// enabled extensions when extensionName is empty.
	ReadResource(ctx context.Context, extensionName, uri string) (*mcp.ReadResourceResult, error)

	// SearchAvailableExtensions renders the extensions that could be
	// enabled to help with a task.
	SearchAvailableExtensions(ctx context.Context) (string, error)

	// AddExtension installs a catalog entry into the registry.
	AddExtension(ctx context.Context, cfg config.ExtensionConfig) error

	// RemoveExtension removes the named extension from the registry.
	RemoveExtension(ctx context.Context, name string) error

	// ExtensionTools returns the tools the named extension currently
	// advertises. An extension that is not enabled has no tools; that is
	// not an error.
	ExtensionTools(ctx context.Context, name string) ([]mcp.Tool, error)
}

// Catalog is the known-extensions lookup, pure and synchronous.
type Catalog interface {
	GetExtensionByName(name string) (config.ExtensionConfig, bool)
}

// ToolMatch is one search hit from a tool selector.
type ToolMatch struct {
	Extension   string  `json:"extension"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Schema      string  `json:"schema,omitempty"`
	Score       float32 `json:"score"`
}

// ToolSelector is the search index over tools of enabled extensions, owned
// by the tool route manager.
type ToolSelector interface {
	IndexTools(ctx context.Context, extensionName string, tools []mcp.Tool) error
	RemoveTools(ctx context.Context, extensionName string) error
	Search(ctx context.Context, extensionName, query string, k int) ([]ToolMatch, error)
}

// ToolRouteManager is the backing component owning the tool search index.
type ToolRouteManager interface {
	// IsRouterFunctional reports whether the router can serve index
	// updates right now.
	IsRouterFunctional(ctx context.Context) bool

	// RouterToolSelector returns the live selector handle, if any.
	RouterToolSelector() (ToolSelector, bool)

	// DispatchRouteSearchTool submits a search and returns a pending
	// handle. Submission and resolution fail independently.
	DispatchRouteSearchTool(ctx context.Context, arguments map[string]any) (*PendingSearch, error)
}

// SearchOutcome is the resolved value of a pending search.
type SearchOutcome struct {
	Content []mcp.Content
	Err     error
}

// PendingSearch is the handle for a dispatched search: submission already
// succeeded, the content is obtained by a second resolution step. Keeping
// the two phases apart lets the caller cancel resolution without having to
// unwind the submission.
type PendingSearch struct {
	outcome <-chan SearchOutcome
}

// NewPendingSearch wraps an outcome channel. The producer sends exactly one
// outcome; closing the channel without sending marks the search as aborted.
func NewPendingSearch(outcome <-chan SearchOutcome) *PendingSearch {
	return &PendingSearch{outcome: outcome}
}

// Resolve blocks until the search produces its outcome or ctx is done.
func (p *PendingSearch) Resolve(ctx context.Context) ([]mcp.Content, error) {
	select {
	case out, ok := <-p.outcome:
		if !ok {
			return nil, errors.New("search aborted before producing a result")
		}
		return out.Content, out.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
