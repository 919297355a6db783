// Package extensions implements the extension manager backing the platform
// adapters: a registry of enabled extensions, each contributing tools and
// optional resources declared in the known-extensions catalog.
package extensions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/pkg/config"
	"github.com/theapemachine/mcp-platform-bridge/pkg/platform"
)

// Extension is one enabled extension in the registry.
type Extension struct {
	ID          string
	Name        string
	Description string
	Tools       []mcp.Tool
	Resources   []config.ResourceConfig
}

// Manager owns the registry of enabled extensions. It synchronizes its own
// state; the adapters calling into it hold no locks of their own.
type Manager struct {
	mu         sync.RWMutex
	extensions map[string]*Extension
	order      []string
	catalog    *config.Catalog
}

var _ platform.ExtensionManager = (*Manager)(nil)

// NewManager builds an empty registry over the given catalog. Catalog
// entries flagged as enabled are installed immediately.
func NewManager(catalog *config.Catalog) *Manager {
	m := &Manager{
		extensions: make(map[string]*Extension),
		catalog:    catalog,
	}
	for _, entry := range catalog.All() {
		if entry.Enabled {
			if err := m.AddExtension(context.Background(), entry); err != nil {
				log.Error("failed to enable extension at startup", "extension", entry.Name, "error", err)
			}
		}
	}
	return m
}

// SupportsResources reports whether any enabled extension contributes
// resources.
func (m *Manager) SupportsResources(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ext := range m.extensions {
		if len(ext.Resources) > 0 {
			return true
		}
	}
	return false
}

// ListResources lists resources from the named extension, or from every
// enabled extension when extensionName is empty.
func (m *Manager) ListResources(ctx context.Context, extensionName string) ([]mcp.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var resources []mcp.Resource
	for _, name := range m.order {
		if extensionName != "" && name != extensionName {
			continue
		}
		for _, res := range m.extensions[name].Resources {
			resources = append(resources, mcp.Resource{
				URI:         res.URI,
				Name:        res.Name,
				Description: res.Description,
				MIMEType:    res.MIMEType,
			})
		}
	}

	if extensionName != "" {
		if _, enabled := m.extensions[extensionName]; !enabled {
			return nil, fmt.Errorf("extension '%s' is not enabled", extensionName)
		}
	}
	return resources, nil
}

// ReadResource resolves uri in the named extension, or across every enabled
// extension when extensionName is empty.
func (m *Manager) ReadResource(ctx context.Context, extensionName, uri string) (*mcp.ReadResourceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		if extensionName != "" && name != extensionName {
			continue
		}
		for _, res := range m.extensions[name].Resources {
			if res.URI != uri {
				continue
			}
			mimeType := res.MIMEType
			if mimeType == "" {
				mimeType = "text/plain"
			}
			return &mcp.ReadResourceResult{
				Contents: []mcp.ResourceContents{
					mcp.TextResourceContents{
						URI:      res.URI,
						MIMEType: mimeType,
						Text:     res.Text,
					},
				},
			}, nil
		}
	}
	return nil, fmt.Errorf("resource '%s' not found", uri)
}

// SearchAvailableExtensions renders the catalog entries that are not
// currently enabled.
func (m *Manager) SearchAvailableExtensions(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("Extensions available to enable:\n")
	available := 0
	for _, entry := range m.catalog.All() {
		if _, enabled := m.extensions[entry.Name]; enabled {
			continue
		}
		available++
		fmt.Fprintf(&sb, "- %s: %s\n", entry.Name, entry.Description)
	}
	if available == 0 {
		return "No additional extensions are available; every known extension is already enabled.", nil
	}
	return sb.String(), nil
}

// AddExtension installs a catalog entry into the registry. Installing a name
// that is already enabled replaces the previous instance.
func (m *Manager) AddExtension(ctx context.Context, cfg config.ExtensionConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("extension config has no name")
	}

	ext := &Extension{
		ID:          uuid.NewString(),
		Name:        cfg.Name,
		Description: cfg.Description,
		Resources:   cfg.Resources,
	}
	for _, tc := range cfg.Tools {
		ext.Tools = append(ext.Tools, buildTool(cfg.Name, tc))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, enabled := m.extensions[cfg.Name]; !enabled {
		m.order = append(m.order, cfg.Name)
	}
	m.extensions[cfg.Name] = ext

	log.Info("extension enabled", "extension", cfg.Name, "id", ext.ID, "tools", len(ext.Tools))
	return nil
}

// RemoveExtension removes the named extension. Removing a name that is not
// enabled fails the same way every time.
func (m *Manager) RemoveExtension(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, enabled := m.extensions[name]; !enabled {
		return fmt.Errorf("extension '%s' is not enabled", name)
	}
	delete(m.extensions, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	log.Info("extension disabled", "extension", name)
	return nil
}

// ExtensionTools returns the tools the named extension currently advertises.
// A name that is not enabled advertises nothing.
func (m *Manager) ExtensionTools(ctx context.Context, name string) ([]mcp.Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ext, enabled := m.extensions[name]
	if !enabled {
		return nil, nil
	}
	tools := make([]mcp.Tool, len(ext.Tools))
	copy(tools, ext.Tools)
	return tools, nil
}

// EnabledExtensions returns the names of the enabled extensions in enable
// order.
func (m *Manager) EnabledExtensions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

func buildTool(extensionName string, tc config.ToolConfig) mcp.Tool {
	if tc.InputSchema != nil {
		schema, err := json.Marshal(tc.InputSchema)
		if err == nil {
			return mcp.NewToolWithRawSchema(tc.Name, tc.Description, schema)
		}
		log.Warn("invalid input schema in catalog, using empty schema",
			"extension", extensionName, "tool", tc.Name, "error", err)
	}
	return mcp.NewTool(tc.Name, mcp.WithDescription(tc.Description))
}
