// Command server runs the MCP Platform Bridge: the Core and Extension
// Manager platform adapters served over stdio.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/theapemachine/mcp-platform-bridge/core"
	"github.com/theapemachine/mcp-platform-bridge/pkg/config"
	"github.com/theapemachine/mcp-platform-bridge/pkg/extensions"
	"github.com/theapemachine/mcp-platform-bridge/pkg/platform"
	"github.com/theapemachine/mcp-platform-bridge/pkg/router"
)

func main() {
	// Stdout carries the protocol; everything else goes to stderr.
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
	log.Info("starting MCP Platform Bridge")

	cfg := config.Load()
	catalog := config.NewCatalog(cfg.Extensions)
	manager := extensions.NewManager(catalog)
	routeManager := router.NewManager(buildSelector(cfg))

	pctx := platform.Context{
		ExtensionManager: platform.NewRef[platform.ExtensionManager](manager),
		ToolRouteManager: platform.NewRef[platform.ToolRouteManager](routeManager),
	}

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(platform.SearchToolsInstructions()),
	)

	registry := NewClientRegistry(mcpServer)
	ctx := context.Background()
	if err := registry.Register(ctx, platform.NewCoreClient(pctx)); err != nil {
		log.Fatal("failed to register core adapter", "error", err)
	}
	if err := registry.Register(ctx, platform.NewExtensionManagerClient(pctx, catalog)); err != nil {
		log.Fatal("failed to register extension manager adapter", "error", err)
	}

	log.Info("server started, waiting for requests",
		"extensions", manager.EnabledExtensions(),
		"router_functional", routeManager.IsRouterFunctional(ctx))
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatal("server error", "error", err)
	}

	log.Info("server shutdown complete")
}

// buildSelector picks the selector backend from config. Router problems are
// not fatal: the bridge degrades to a non-functional router, which skips
// index syncs and hides the search tool.
func buildSelector(cfg *config.Config) platform.ToolSelector {
	if !cfg.Router.Enabled {
		return nil
	}

	switch cfg.Router.Backend {
	case "qdrant":
		embedder := router.NewOpenAIEmbedder(cfg.Router.OpenAI.APIKey, cfg.Router.OpenAI.Model)
		selector, err := router.NewQdrantSelector(router.QdrantConfig{
			Host:       cfg.Router.Qdrant.Host,
			Port:       cfg.Router.Qdrant.Port,
			APIKey:     cfg.Router.Qdrant.APIKey,
			UseTLS:     cfg.Router.Qdrant.UseTLS,
			Collection: cfg.Router.Qdrant.Collection,
		}, embedder)
		if err != nil {
			log.Error("qdrant selector unavailable, router disabled", "error", err)
			return nil
		}
		return selector
	case "memory", "":
		return router.NewMemorySelector()
	default:
		log.Error("unknown router backend, router disabled", "backend", cfg.Router.Backend)
		return nil
	}
}

// ClientRegistry bridges platform adapters onto the MCP server: each
// advertised tool is registered with a handler that routes the call back
// through the adapter, so dispatch and error rendering stay in one place.
type ClientRegistry struct {
	server *server.MCPServer
}

// NewClientRegistry creates a registry over the given server.
func NewClientRegistry(mcpServer *server.MCPServer) *ClientRegistry {
	return &ClientRegistry{server: mcpServer}
}

// Register lists the client's tools and wires each one to the client's own
// CallTool dispatch.
func (r *ClientRegistry) Register(ctx context.Context, client core.Client) error {
	result, err := client.ListTools(ctx)
	if err != nil {
		return err
	}

	for _, tool := range result.Tools {
		r.server.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return client.CallTool(ctx, req.Params.Name, req.GetArguments())
		})
	}

	info := client.GetInfo()
	log.Info("adapter registered", "name", info.ServerInfo.Name, "tools", len(result.Tools))
	return nil
}
