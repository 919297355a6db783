package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/mcp-platform-bridge/core"
)

func TestCoreClientInfo(t *testing.T) {
	Convey("Given a core client", t, func() {
		client := NewCoreClient(Context{})

		Convey("It should implement the core.Client contract", func() {
			So(client, ShouldImplement, (*core.Client)(nil))
		})

		Convey("GetInfo should return a tools-only descriptor", func() {
			info := client.GetInfo()
			So(info.ServerInfo.Name, ShouldEqual, "Core")
			So(info.ServerInfo.Version, ShouldEqual, "1.0.0")
			So(info.Capabilities.Tools, ShouldNotBeNil)
			So(info.Capabilities.Resources, ShouldBeNil)
			So(info.Capabilities.Prompts, ShouldBeNil)
			So(info.Instructions, ShouldContainSubstring, "search_tools")
		})
	})
}

func TestCoreClientListTools(t *testing.T) {
	ctx := context.Background()

	Convey("Given a core client with no backing components", t, func() {
		client := NewCoreClient(Context{})

		Convey("ListTools should advertise nothing", func() {
			result, err := client.ListTools(ctx)
			So(err, ShouldBeNil)
			So(result.Tools, ShouldBeEmpty)
		})
	})

	Convey("Given a live extension manager that supports resources", t, func() {
		em := newMockExtensionManager(&callLog{})
		em.supportsResources = true
		client := NewCoreClient(contextWith(em, nil))

		Convey("ListTools should advertise the resource tools in declaration order", func() {
			result, err := client.ListTools(ctx)
			So(err, ShouldBeNil)
			So(len(result.Tools), ShouldEqual, 2)
			So(result.Tools[0].Name, ShouldEqual, ListResourcesToolName)
			So(result.Tools[1].Name, ShouldEqual, ReadResourceToolName)
		})

		Convey("When resource support disappears between calls", func() {
			first, _ := client.ListTools(ctx)
			em.supportsResources = false
			second, _ := client.ListTools(ctx)

			Convey("The second call should reflect the new state", func() {
				So(len(first.Tools), ShouldEqual, 2)
				So(second.Tools, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a live tool route manager", t, func() {
		trm := &mockRouteManager{functional: true}
		pctx := contextWith(nil, trm)
		client := NewCoreClient(pctx)

		Convey("ListTools should advertise exactly one search tool", func() {
			result, err := client.ListTools(ctx)
			So(err, ShouldBeNil)
			So(len(result.Tools), ShouldEqual, 1)
			So(result.Tools[0].Name, ShouldEqual, SearchToolsToolName)
		})

		Convey("When the route manager goes away", func() {
			pctx.ToolRouteManager.Release()

			Convey("The search tool should disappear", func() {
				result, err := client.ListTools(ctx)
				So(err, ShouldBeNil)
				So(result.Tools, ShouldBeEmpty)
			})
		})
	})

	Convey("Given both backing components live", t, func() {
		em := newMockExtensionManager(&callLog{})
		em.supportsResources = true
		client := NewCoreClient(contextWith(em, &mockRouteManager{}))

		Convey("ListTools should advertise all three tools in declaration order", func() {
			result, err := client.ListTools(ctx)
			So(err, ShouldBeNil)
			So(len(result.Tools), ShouldEqual, 3)
			So(result.Tools[0].Name, ShouldEqual, ListResourcesToolName)
			So(result.Tools[1].Name, ShouldEqual, ReadResourceToolName)
			So(result.Tools[2].Name, ShouldEqual, SearchToolsToolName)
		})
	})
}

func TestCoreClientCallToolUnknown(t *testing.T) {
	ctx := context.Background()

	Convey("Given a core client", t, func() {
		client := NewCoreClient(Context{})

		Convey("Calling an unknown tool should render an error result, not fail", func() {
			result, err := client.CallTool(ctx, "no_such_tool", nil)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "unknown tool")
			So(textOf(result), ShouldContainSubstring, "no_such_tool")
		})
	})
}

func TestCoreClientResourceTools(t *testing.T) {
	ctx := context.Background()

	Convey("Given a core client without an extension manager", t, func() {
		client := NewCoreClient(Context{})

		Convey("list_resources should render manager unavailable", func() {
			result, err := client.CallTool(ctx, ListResourcesToolName, nil)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "extension manager not available")
		})
	})

	Convey("Given a core client with a live extension manager", t, func() {
		em := newMockExtensionManager(&callLog{})
		em.resources = []mcp.Resource{{URI: "extension://developer/readme", Name: "readme"}}
		em.readResult = &mcp.ReadResourceResult{
			Contents: []mcp.ResourceContents{
				mcp.TextResourceContents{URI: "extension://developer/readme", MIMEType: "text/plain", Text: "hello"},
			},
		}
		client := NewCoreClient(contextWith(em, nil))

		Convey("list_resources should render the resource list", func() {
			result, err := client.CallTool(ctx, ListResourcesToolName, map[string]any{"extension_name": "developer"})
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)
			So(textOf(result), ShouldContainSubstring, "extension://developer/readme")
		})

		Convey("list_resources should wrap backing failures as operation failed", func() {
			em.listErr = errors.New("registry offline")
			result, err := client.CallTool(ctx, ListResourcesToolName, nil)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "failed to list resources: registry offline")
		})

		Convey("read_resource should require a uri", func() {
			result, err := client.CallTool(ctx, ReadResourceToolName, map[string]any{})
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "missing required parameter: uri")
		})

		Convey("read_resource should return the resource text", func() {
			result, err := client.CallTool(ctx, ReadResourceToolName, map[string]any{"uri": "extension://developer/readme"})
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)
			So(textOf(result), ShouldEqual, "hello")
		})

		Convey("read_resource should reject malformed arguments", func() {
			result, err := client.CallTool(ctx, ReadResourceToolName, map[string]any{"uri": 42})
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "failed to deserialize parameters")
		})
	})
}

func TestCoreClientSearchTools(t *testing.T) {
	ctx := context.Background()
	searchArgs := map[string]any{"extension_name": "developer", "query": "list files", "k": 5}

	Convey("Given a core client without a tool route manager", t, func() {
		client := NewCoreClient(Context{})

		Convey("search_tools should render route manager unavailable", func() {
			result, err := client.CallTool(ctx, SearchToolsToolName, searchArgs)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "tool route manager not available")
		})
	})

	Convey("Given a tool route manager whose submission fails", t, func() {
		trm := &mockRouteManager{dispatchErr: errors.New("selector offline")}
		client := NewCoreClient(contextWith(nil, trm))

		Convey("search_tools should map the failure to operation failed", func() {
			result, err := client.CallTool(ctx, SearchToolsToolName, searchArgs)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "operation failed: selector offline")
		})
	})

	Convey("Given a tool route manager whose resolution fails", t, func() {
		trm := &mockRouteManager{outcome: &SearchOutcome{Err: errors.New("index corrupt")}}
		client := NewCoreClient(contextWith(nil, trm))

		Convey("search_tools should map the failure to operation failed", func() {
			result, err := client.CallTool(ctx, SearchToolsToolName, searchArgs)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(textOf(result), ShouldContainSubstring, "operation failed: index corrupt")
		})
	})

	Convey("Given a tool route manager that resolves content", t, func() {
		trm := &mockRouteManager{
			outcome: &SearchOutcome{Content: []mcp.Content{mcp.NewTextContent(`[{"name":"shell"}]`)}},
		}
		client := NewCoreClient(contextWith(nil, trm))

		Convey("search_tools should pass the content through", func() {
			result, err := client.CallTool(ctx, SearchToolsToolName, searchArgs)
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)
			So(textOf(result), ShouldContainSubstring, "shell")
		})
	})
}

func TestCoreClientTransport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a core client with no extension manager", t, func() {
		client := NewCoreClient(Context{})

		Convey("Prompt operations should report a closed transport", func() {
			_, err := client.ListPrompts(ctx)
			So(err, ShouldEqual, core.ErrTransportClosed)
			_, err = client.GetPrompt(ctx, "anything", nil)
			So(err, ShouldEqual, core.ErrTransportClosed)
		})

		Convey("Resource operations should report a closed transport", func() {
			_, err := client.ListResources(ctx, "")
			So(err, ShouldEqual, core.ErrTransportClosed)
			_, err = client.ReadResource(ctx, "extension://x/y")
			So(err, ShouldEqual, core.ErrTransportClosed)
		})

		Convey("Subscribe should return an already-closed stream", func() {
			_, open := <-client.Subscribe()
			So(open, ShouldBeFalse)
		})
	})

	Convey("Given a core client with a live extension manager", t, func() {
		em := newMockExtensionManager(&callLog{})
		em.resources = []mcp.Resource{{URI: "extension://developer/readme"}}
		client := NewCoreClient(contextWith(em, nil))

		Convey("ListResources should forward to the manager", func() {
			result, err := client.ListResources(ctx, "developer")
			So(err, ShouldBeNil)
			So(len(result.Resources), ShouldEqual, 1)
			So(result.Resources[0].URI, ShouldEqual, "extension://developer/readme")
		})
	})
}
