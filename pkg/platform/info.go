package platform

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const adapterVersion = "1.0.0"

// newServerInfo builds the static capability descriptor shared by both
// adapters: tools only, no resources, prompts, or logging capability.
func newServerInfo(name, instructions string) mcp.InitializeResult {
	return mcp.InitializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged,omitempty"`
			}{ListChanged: false},
		},
		ServerInfo: mcp.Implementation{
			Name:    name,
			Version: adapterVersion,
		},
		Instructions: instructions,
	}
}

func closedNotifications() <-chan mcp.JSONRPCNotification {
	ch := make(chan mcp.JSONRPCNotification)
	close(ch)
	return ch
}

func readOnlyAnnotations(title string) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		IdempotentHint:  mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(false),
	}
}

// renderResourceContents flattens a read result into call-tool content.
// Text contents pass through as text; anything else is rendered as JSON.
func renderResourceContents(result *mcp.ReadResourceResult) ([]mcp.Content, error) {
	content := make([]mcp.Content, 0, len(result.Contents))
	for _, item := range result.Contents {
		if text, ok := item.(mcp.TextResourceContents); ok {
			content = append(content, mcp.NewTextContent(text.Text))
			continue
		}
		rendered, err := json.Marshal(item)
		if err != nil {
			return nil, &OperationFailedError{Message: fmt.Sprintf("failed to render resource contents: %s", err)}
		}
		content = append(content, mcp.NewTextContent(string(rendered)))
	}
	return content, nil
}

// SearchToolsInstructions renders the tool-selection guidance handed to the
// model when dynamic tool retrieval is on: rather than loading every tool of
// every enabled extension into context, the model is told to search first.
func SearchToolsInstructions() string {
	return fmt.Sprintf(`# LLM Tool Selection Instructions
Important: the user has opted to dynamically enable tools, so although an extension could be enabled,
please invoke the llm search tool to actually retrieve the most relevant tools to use according to the user's messages.
For example, if the user has 3 extensions enabled, but they are asking for a tool to read a pdf file,
you would invoke the llm_search tool to find the most relevant read pdf tool.
By dynamically enabling tools, you as the agent save context window space and allow the user to dynamically retrieve the most relevant tools.
Be sure to format a query packed with relevant keywords to search for the most relevant tools.
In addition to the extension names available to you, you also have platform extension tools available to you.
The platform extensions contains the following tools:
- %s
- %s
- %s
- %s
- %s
`,
		SearchAvailableExtensionsToolName,
		ManageExtensionsToolName,
		ReadResourceToolName,
		ListResourcesToolName,
		SearchToolsToolName,
	)
}
