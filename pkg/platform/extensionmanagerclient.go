package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/core"
)

// ExtensionManagerExtensionName identifies the Extension Manager platform
// adapter.
const ExtensionManagerExtensionName = "Extension Manager"

// Tool names recognized by the Extension Manager adapter.
const (
	SearchAvailableExtensionsToolName = "search_available_extensions"
	ManageExtensionsToolName          = "manage_extensions"

	// ManageExtensionsToolNameComplete is the manage tool name as seen by
	// callers that address tools through the adapter prefix.
	ManageExtensionsToolNameComplete = "extensionmanager__manage_extensions"
)

const extensionManagerInstructions = `Extension Management

Use these tools to discover, enable, and disable extensions.

Available tools:
- search_available_extensions: Find extensions available to enable/disable
- manage_extensions: Enable or disable extensions

Use search_available_extensions when you need to find what extensions are available.
Use manage_extensions to enable or disable specific extensions by name.`

// ExtensionManagerClient is the Extension Manager platform adapter. Besides
// the uniform contract it embeds the extension lifecycle orchestration that
// keeps the tool route manager's search index in step with the registry of
// enabled extensions.
type ExtensionManagerClient struct {
	info    mcp.InitializeResult
	context Context
	catalog Catalog
}

var _ core.Client = (*ExtensionManagerClient)(nil)

// NewExtensionManagerClient builds the adapter over the given capability
// context and known-extensions catalog.
func NewExtensionManagerClient(pctx Context, catalog Catalog) *ExtensionManagerClient {
	return &ExtensionManagerClient{
		info:    newServerInfo(ExtensionManagerExtensionName, extensionManagerInstructions),
		context: pctx,
		catalog: catalog,
	}
}

// GetInfo returns the static capability descriptor.
func (c *ExtensionManagerClient) GetInfo() *mcp.InitializeResult {
	info := c.info
	return &info
}

// ListTools returns the adapter's two tools in declaration order. Both are
// always advertised; their handlers resolve liveness per call.
func (c *ExtensionManagerClient) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	return &mcp.ListToolsResult{
		Tools: []mcp.Tool{newSearchAvailableExtensionsTool(), newManageExtensionsTool()},
	}, nil
}

// CallTool dispatches on name. Failures, including unknown names, are logged
// and rendered into an error-flagged result rather than failing the call.
func (c *ExtensionManagerClient) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	var (
		content []mcp.Content
		err     error
	)

	switch name {
	case SearchAvailableExtensionsToolName:
		content, err = c.handleSearchAvailableExtensions(ctx)
	case ManageExtensionsToolName:
		content, err = c.handleManageExtensions(ctx, arguments)
	default:
		err = &UnknownToolError{Tool: name}
	}

	if err != nil {
		log.Error("extension manager tool failed", "tool", name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return &mcp.CallToolResult{Content: content}, nil
}

func (c *ExtensionManagerClient) handleSearchAvailableExtensions(ctx context.Context) ([]mcp.Content, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return nil, ErrManagerUnavailable
	}

	listing, err := em.SearchAvailableExtensions(ctx)
	if err != nil {
		return nil, &OperationFailedError{Message: fmt.Sprintf("failed to search available extensions: %s", err)}
	}
	return []mcp.Content{mcp.NewTextContent(listing)}, nil
}

func (c *ExtensionManagerClient) handleManageExtensions(ctx context.Context, arguments map[string]any) ([]mcp.Content, error) {
	if arguments == nil {
		return nil, &MissingParameterError{Param: "arguments"}
	}

	params, err := decodeParams[ManageExtensionsParams](arguments)
	if err != nil {
		return nil, err
	}
	if params.Action == "" {
		return nil, &MissingParameterError{Param: "action"}
	}
	if !params.Action.Valid() {
		return nil, &InvalidActionError{Action: string(params.Action)}
	}
	if params.ExtensionName == "" {
		return nil, &MissingParameterError{Param: "extension_name"}
	}

	message, err := c.manageExtension(ctx, params.Action, params.ExtensionName)
	if err != nil {
		return nil, &OperationFailedError{Message: err.Error()}
	}
	return []mcp.Content{mcp.NewTextContent(message)}, nil
}

// manageExtension runs one enable/disable orchestration: resolve the backing
// components, speculatively sync the search index, apply the registry
// change, and for enable sync the index again after a successful install.
//
// The index is updated ahead of the registry change and is deliberately not
// rolled back when a later step fails: index and registry updates are
// independent operations with no shared transaction, so a failed enable can
// leave a speculative "add" behind and a failed disable can leave a "remove"
// applied. Callers observe the failure either way.
func (c *ExtensionManagerClient) manageExtension(ctx context.Context, action ManageExtensionAction, extensionName string) (string, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return "", errors.New("extension manager is no longer available")
	}

	trm, trmLive := c.context.toolRouteManager()

	runID := uuid.NewString()
	log.Info("managing extension",
		"run", runID, "action", action, "extension", extensionName)

	if err := c.syncIndex(ctx, trm, trmLive, em, extensionName, action); err != nil {
		return "", err
	}

	if action == ActionDisable {
		if err := em.RemoveExtension(ctx, extensionName); err != nil {
			return "", err
		}
		return fmt.Sprintf("The extension '%s' has been disabled successfully", extensionName), nil
	}

	cfg, found := c.catalog.GetExtensionByName(extensionName)
	if !found {
		return "", fmt.Errorf("extension '%s' not found. Please check the extension name and try again", extensionName)
	}

	if err := em.AddExtension(ctx, cfg); err != nil {
		return "", err
	}

	// The pre-sync ran before the extension existed in the registry, so it
	// indexed nothing; only now are the installed tools known.
	if err := c.syncIndex(ctx, trm, trmLive, em, extensionName, action); err != nil {
		return "", err
	}

	log.Info("extension managed", "run", runID, "action", action, "extension", extensionName)
	return fmt.Sprintf("The extension '%s' has been installed successfully", extensionName), nil
}

// syncIndex updates the search index for one extension when a live,
// functional router with a selector is present. A missing or non-functional
// router skips the sync silently; a failing update is fatal to the run.
func (c *ExtensionManagerClient) syncIndex(ctx context.Context, trm ToolRouteManager, trmLive bool, em ExtensionManager, extensionName string, action ManageExtensionAction) error {
	if !trmLive || !trm.IsRouterFunctional(ctx) {
		return nil
	}
	selector, ok := trm.RouterToolSelector()
	if !ok {
		return nil
	}

	indexAction := IndexActionAdd
	if action == ActionDisable {
		indexAction = IndexActionRemove
	}

	if err := UpdateExtensionTools(ctx, selector, em, extensionName, indexAction); err != nil {
		return fmt.Errorf("failed to update LLM index: %s", err)
	}
	return nil
}

// ListResources is not supported by the Extension Manager adapter; no
// extension manager means no transport for it either.
func (c *ExtensionManagerClient) ListResources(ctx context.Context, extensionName string) (*mcp.ListResourcesResult, error) {
	return nil, core.ErrTransportClosed
}

// ReadResource is not supported by the Extension Manager adapter.
func (c *ExtensionManagerClient) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	return nil, core.ErrTransportClosed
}

// ListPrompts is not supported by the Extension Manager adapter.
func (c *ExtensionManagerClient) ListPrompts(ctx context.Context) (*mcp.ListPromptsResult, error) {
	return nil, core.ErrTransportClosed
}

// GetPrompt is not supported by the Extension Manager adapter.
func (c *ExtensionManagerClient) GetPrompt(ctx context.Context, name string, arguments map[string]any) (*mcp.GetPromptResult, error) {
	return nil, core.ErrTransportClosed
}

// Subscribe returns an already-closed stream: the adapter never emits
// notifications.
func (c *ExtensionManagerClient) Subscribe() <-chan mcp.JSONRPCNotification {
	return closedNotifications()
}

func newSearchAvailableExtensionsTool() mcp.Tool {
	tool := mcp.NewTool(
		SearchAvailableExtensionsToolName,
		mcp.WithDescription(`Searches for additional extensions available to help complete tasks.
Use this tool when you're unable to find a specific feature or functionality you need to complete your task, or when standard approaches aren't working.
These extensions might provide the exact tools needed to solve your problem.
If you find a relevant one, consider using your tools to enable it.`),
	)
	tool.Annotations = readOnlyAnnotations("Discover extensions")
	return tool
}

func newManageExtensionsTool() mcp.Tool {
	tool := mcp.NewToolWithRawSchema(
		ManageExtensionsToolName,
		`Tool to manage extensions and tools in the agent's context.
Enable or disable extensions to help complete tasks.
Enable or disable an extension by providing the extension name.`,
		schemaFor[ManageExtensionsParams](),
	)
	tool.Annotations = mcp.ToolAnnotation{
		Title:           "Enable or disable an extension",
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(false),
		IdempotentHint:  mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}
	return tool
}
