package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/core"
)

// CoreExtensionName identifies the Core platform adapter.
const CoreExtensionName = "Core"

// Tool names recognized by the Core adapter.
const (
	ListResourcesToolName = "list_resources"
	ReadResourceToolName  = "read_resource"
	SearchToolsToolName   = "search_tools"
)

const coreInstructions = `Core Extension

This extension provides tools to review MCP resources and tool discovery capabilities.

Available tools:
- list_resources: List resources from extensions. This tool is only available if any of the extensions supports resources.
- read_resource: Read specific resources from extensions. This tool is only available if any of the extensions supports resources.
- search_tools: Search for relevant tools based on user messages

Use list_resources and read_resource to work with extension data and resources.
Use search_tools to dynamically discover and retrieve the most relevant tools for a given task.`

// CoreClient is the Core platform adapter. It holds no durable state: every
// operation resolves the backing components through the capability context
// and computes its answer from whatever is live right now.
type CoreClient struct {
	info    mcp.InitializeResult
	context Context
}

var _ core.Client = (*CoreClient)(nil)

// NewCoreClient builds the Core adapter over the given capability context.
func NewCoreClient(pctx Context) *CoreClient {
	return &CoreClient{
		info:    newServerInfo(CoreExtensionName, coreInstructions),
		context: pctx,
	}
}

// GetInfo returns the static capability descriptor.
func (c *CoreClient) GetInfo() *mcp.InitializeResult {
	info := c.info
	return &info
}

// ListTools recomputes the advertised tool set from live backing-component
// state. Resource tools are only advertised while a live extension manager
// reports that some enabled extension supports resources; the search tool is
// only advertised while a tool route manager is reachable.
func (c *CoreClient) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	var tools []mcp.Tool

	if em, ok := c.context.extensionManager(); ok && em.SupportsResources(ctx) {
		tools = append(tools, newListResourcesTool(), newReadResourceTool())
	}
	if _, ok := c.context.toolRouteManager(); ok {
		tools = append(tools, newSearchToolsTool())
	}

	return &mcp.ListToolsResult{Tools: tools}, nil
}

// CallTool dispatches on name against the adapter's recognized tool names.
// Handler failures are logged and rendered into an error-flagged result; the
// call itself never fails for a recognized name, and an unknown name is
// rendered the same way.
func (c *CoreClient) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	var (
		content []mcp.Content
		err     error
	)

	switch name {
	case ListResourcesToolName:
		content, err = c.handleListResources(ctx, arguments)
	case ReadResourceToolName:
		content, err = c.handleReadResource(ctx, arguments)
	case SearchToolsToolName:
		content, err = c.handleSearchTools(ctx, arguments)
	default:
		err = &UnknownToolError{Tool: name}
	}

	if err != nil {
		log.Error("core tool failed", "tool", name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return &mcp.CallToolResult{Content: content}, nil
}

func (c *CoreClient) handleListResources(ctx context.Context, arguments map[string]any) ([]mcp.Content, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return nil, ErrManagerUnavailable
	}

	params, err := decodeParams[ListResourcesParams](arguments)
	if err != nil {
		return nil, err
	}

	resources, err := em.ListResources(ctx, params.ExtensionName)
	if err != nil {
		return nil, &OperationFailedError{Message: fmt.Sprintf("failed to list resources: %s", err)}
	}

	rendered, err := json.MarshalIndent(resources, "", "  ")
	if err != nil {
		return nil, &OperationFailedError{Message: fmt.Sprintf("failed to render resources: %s", err)}
	}
	return []mcp.Content{mcp.NewTextContent(string(rendered))}, nil
}

func (c *CoreClient) handleReadResource(ctx context.Context, arguments map[string]any) ([]mcp.Content, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return nil, ErrManagerUnavailable
	}

	params, err := decodeParams[ReadResourceParams](arguments)
	if err != nil {
		return nil, err
	}
	if params.URI == "" {
		return nil, &MissingParameterError{Param: "uri"}
	}

	result, err := em.ReadResource(ctx, params.ExtensionName, params.URI)
	if err != nil {
		return nil, &OperationFailedError{Message: fmt.Sprintf("failed to read resource: %s", err)}
	}
	return renderResourceContents(result)
}

func (c *CoreClient) handleSearchTools(ctx context.Context, arguments map[string]any) ([]mcp.Content, error) {
	trm, ok := c.context.toolRouteManager()
	if !ok {
		return nil, ErrToolRouteManagerUnavailable
	}

	pending, err := trm.DispatchRouteSearchTool(ctx, arguments)
	if err != nil {
		return nil, &OperationFailedError{Message: err.Error()}
	}

	content, err := pending.Resolve(ctx)
	if err != nil {
		return nil, &OperationFailedError{Message: err.Error()}
	}
	return content, nil
}

// ListResources forwards to the live extension manager; without one the
// operation is not carried at all.
func (c *CoreClient) ListResources(ctx context.Context, extensionName string) (*mcp.ListResourcesResult, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return nil, core.ErrTransportClosed
	}
	resources, err := em.ListResources(ctx, extensionName)
	if err != nil {
		return nil, err
	}
	return &mcp.ListResourcesResult{Resources: resources}, nil
}

// ReadResource forwards to the live extension manager; without one the
// operation is not carried at all.
func (c *CoreClient) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	em, ok := c.context.extensionManager()
	if !ok {
		return nil, core.ErrTransportClosed
	}
	return em.ReadResource(ctx, "", uri)
}

// ListPrompts is not supported by the Core adapter.
func (c *CoreClient) ListPrompts(ctx context.Context) (*mcp.ListPromptsResult, error) {
	return nil, core.ErrTransportClosed
}

// GetPrompt is not supported by the Core adapter.
func (c *CoreClient) GetPrompt(ctx context.Context, name string, arguments map[string]any) (*mcp.GetPromptResult, error) {
	return nil, core.ErrTransportClosed
}

// Subscribe returns an already-closed stream: the Core adapter never emits
// notifications.
func (c *CoreClient) Subscribe() <-chan mcp.JSONRPCNotification {
	return closedNotifications()
}

func newListResourcesTool() mcp.Tool {
	tool := mcp.NewToolWithRawSchema(
		ListResourcesToolName,
		`List resources from an extension(s).

Resources allow extensions to share data that provide context to LLMs, such as
files, database schemas, or application-specific information. This tool lists resources
in the provided extension, and returns a list for the user to browse. If no extension
is provided, the tool will search all extensions for the resource.`,
		schemaFor[ListResourcesParams](),
	)
	tool.Annotations = readOnlyAnnotations("List resources")
	return tool
}

func newReadResourceTool() mcp.Tool {
	tool := mcp.NewToolWithRawSchema(
		ReadResourceToolName,
		`Read a resource from an extension.

Resources allow extensions to share data that provide context to LLMs, such as
files, database schemas, or application-specific information. This tool searches for the
resource URI in the provided extension, and reads in the resource content. If no extension
is provided, the tool will search all extensions for the resource.`,
		schemaFor[ReadResourceParams](),
	)
	tool.Annotations = readOnlyAnnotations("Read a resource")
	return tool
}

func newSearchToolsTool() mcp.Tool {
	tool := mcp.NewToolWithRawSchema(
		SearchToolsToolName,
		`Searches for relevant tools based on the user's messages.
Format a query to search for the most relevant tools based on the user's messages.
Pay attention to the keywords in the user's messages, especially the last message and potential tools they are asking for.
This tool should be invoked when the user's messages suggest they are asking for a tool to be run.
Use the extension_name parameter to filter tools by the appropriate extension.
For example, if the user is asking to list the files in the current directory, you filter for the "developer" extension.
Example: {"User": "list the files in the current directory", "Query": "list files in current directory", "Extension Name": "developer", "k": 5}
Extension name is not optional, it is required.
The returned result will be a list of tool names, descriptions, and schemas from which you, the agent can select the most relevant tool to invoke.`,
		schemaFor[SearchToolsParams](),
	)
	tool.Annotations = readOnlyAnnotations("LLM search for relevant tools")
	return tool
}
