// Package core defines the call contract shared by every in-process adapter
// the bridge exposes to its host. Concrete adapters live in pkg/platform.
package core

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrTransportClosed signals that an operation is not carried by this client
// at all. It is distinct from a tool-call error: a recognized tool name never
// fails the transport, it renders its failure into the call result instead.
var ErrTransportClosed = errors.New("transport closed")

// Client is the uniform call contract every adapter in the bridge honors.
// Implementations hold no durable state of their own; anything returned from
// ListTools or CallTool is computed from the live state of the backing
// components at the time of the call.
type Client interface {
	// GetInfo returns the static capability descriptor for this client.
	// Pure, no side effects.
	GetInfo() *mcp.InitializeResult

	// ListTools returns the tools currently advertised by this client.
	// The set is recomputed on every call and may differ between two
	// consecutive calls as backing-component state changes. Ordering is
	// deterministic, fixed by declaration order.
	ListTools(ctx context.Context) (*mcp.ListToolsResult, error)

	// CallTool dispatches on name against the client's fixed set of
	// recognized tool names. For a recognized name the call itself never
	// fails: handler errors come back as a result with IsError set. Only
	// an unrecognized name produces an error result, and even that is
	// rendered, not returned as a transport failure.
	CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error)

	// ListResources forwards to the backing extension manager when one is
	// reachable and returns ErrTransportClosed otherwise.
	ListResources(ctx context.Context, extensionName string) (*mcp.ListResourcesResult, error)

	// ReadResource forwards to the backing extension manager when one is
	// reachable and returns ErrTransportClosed otherwise.
	ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error)

	// ListPrompts and GetPrompt are not supported by any bridge adapter
	// and always return ErrTransportClosed.
	ListPrompts(ctx context.Context) (*mcp.ListPromptsResult, error)
	GetPrompt(ctx context.Context, name string, arguments map[string]any) (*mcp.GetPromptResult, error)

	// Subscribe returns the notification stream for this client. Adapters
	// that never emit notifications return an already-closed channel,
	// which is not an error: it signals that nothing will ever arrive.
	Subscribe() <-chan mcp.JSONRPCNotification
}
