package platform

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/pkg/config"
)

// callLog records backing-component calls across mocks so tests can assert
// the ordering contract of an orchestration run.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) record(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *callLog) count(entry string) int {
	n := 0
	for _, e := range l.all() {
		if e == entry {
			n++
		}
	}
	return n
}

type mockExtensionManager struct {
	log *callLog

	supportsResources bool
	resources         []mcp.Resource
	listErr           error
	readResult        *mcp.ReadResourceResult
	readErr           error
	searchText        string
	searchErr         error
	addErr            error
	removeErr         error

	mu    sync.Mutex
	tools map[string][]mcp.Tool
}

func newMockExtensionManager(log *callLog) *mockExtensionManager {
	return &mockExtensionManager{log: log, tools: make(map[string][]mcp.Tool)}
}

func (m *mockExtensionManager) SupportsResources(ctx context.Context) bool {
	return m.supportsResources
}

func (m *mockExtensionManager) ListResources(ctx context.Context, extensionName string) ([]mcp.Resource, error) {
	return m.resources, m.listErr
}

func (m *mockExtensionManager) ReadResource(ctx context.Context, extensionName, uri string) (*mcp.ReadResourceResult, error) {
	return m.readResult, m.readErr
}

func (m *mockExtensionManager) SearchAvailableExtensions(ctx context.Context) (string, error) {
	return m.searchText, m.searchErr
}

func (m *mockExtensionManager) AddExtension(ctx context.Context, cfg config.ExtensionConfig) error {
	m.log.record("registry.add:" + cfg.Name)
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var tools []mcp.Tool
	for _, tc := range cfg.Tools {
		tools = append(tools, mcp.NewTool(tc.Name, mcp.WithDescription(tc.Description)))
	}
	m.tools[cfg.Name] = tools
	return nil
}

func (m *mockExtensionManager) RemoveExtension(ctx context.Context, name string) error {
	m.log.record("registry.remove:" + name)
	if m.removeErr != nil {
		return m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tools, name)
	return nil
}

func (m *mockExtensionManager) ExtensionTools(ctx context.Context, name string) ([]mcp.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tools[name], nil
}

type mockSelector struct {
	log        *callLog
	indexErr   error
	indexErrOn int // 1-based IndexTools call to fail on; 0 fails every call
	indexCalls int
	removeErr  error
	matches    []ToolMatch
	searchErr  error
}

func (s *mockSelector) IndexTools(ctx context.Context, extensionName string, tools []mcp.Tool) error {
	s.indexCalls++
	s.log.record("index.add:" + extensionName)
	if s.indexErr != nil && (s.indexErrOn == 0 || s.indexCalls == s.indexErrOn) {
		return s.indexErr
	}
	return nil
}

func (s *mockSelector) RemoveTools(ctx context.Context, extensionName string) error {
	s.log.record("index.remove:" + extensionName)
	return s.removeErr
}

func (s *mockSelector) Search(ctx context.Context, extensionName, query string, k int) ([]ToolMatch, error) {
	s.log.record("index.search:" + extensionName)
	return s.matches, s.searchErr
}

type mockRouteManager struct {
	functional  bool
	selector    ToolSelector
	dispatchErr error
	outcome     *SearchOutcome
}

func (m *mockRouteManager) IsRouterFunctional(ctx context.Context) bool {
	return m.functional
}

func (m *mockRouteManager) RouterToolSelector() (ToolSelector, bool) {
	if m.selector == nil {
		return nil, false
	}
	return m.selector, true
}

func (m *mockRouteManager) DispatchRouteSearchTool(ctx context.Context, arguments map[string]any) (*PendingSearch, error) {
	if m.dispatchErr != nil {
		return nil, m.dispatchErr
	}
	ch := make(chan SearchOutcome, 1)
	if m.outcome != nil {
		ch <- *m.outcome
	}
	close(ch)
	return NewPendingSearch(ch), nil
}

type mockCatalog map[string]config.ExtensionConfig

func (c mockCatalog) GetExtensionByName(name string) (config.ExtensionConfig, bool) {
	cfg, ok := c[name]
	return cfg, ok
}

func contextWith(em ExtensionManager, trm ToolRouteManager) Context {
	pctx := Context{}
	if em != nil {
		pctx.ExtensionManager = NewRef(em)
	}
	if trm != nil {
		pctx.ToolRouteManager = NewRef(trm)
	}
	return pctx
}

func textOf(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return ""
}
