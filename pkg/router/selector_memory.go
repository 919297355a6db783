package router

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/theapemachine/mcp-platform-bridge/pkg/platform"
)

type indexedTool struct {
	name        string
	description string
	schema      string
	terms       []string
}

// MemorySelector is the in-process selector backend: keyword scoring over
// tool names and descriptions. It needs no infrastructure, which makes it
// the default backend and the one tests run against.
type MemorySelector struct {
	mu    sync.RWMutex
	tools map[string][]indexedTool
}

var _ platform.ToolSelector = (*MemorySelector)(nil)

// NewMemorySelector builds an empty in-memory selector.
func NewMemorySelector() *MemorySelector {
	return &MemorySelector{tools: make(map[string][]indexedTool)}
}

// IndexTools replaces the indexed tools of one extension.
func (s *MemorySelector) IndexTools(ctx context.Context, extensionName string, tools []mcp.Tool) error {
	indexed := make([]indexedTool, 0, len(tools))
	for _, tool := range tools {
		indexed = append(indexed, indexedTool{
			name:        tool.Name,
			description: tool.Description,
			schema:      toolSchemaJSON(tool),
			terms:       tokenize(tool.Name + " " + tool.Description),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[extensionName] = indexed
	return nil
}

// RemoveTools drops every indexed tool of one extension.
func (s *MemorySelector) RemoveTools(ctx context.Context, extensionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tools, extensionName)
	return nil
}

// Search scores the extension's tools against the query terms and returns
// the top k matches.
func (s *MemorySelector) Search(ctx context.Context, extensionName, query string, k int) ([]platform.ToolMatch, error) {
	queryTerms := tokenize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []platform.ToolMatch
	for _, tool := range s.tools[extensionName] {
		score := overlap(queryTerms, tool.terms)
		if score == 0 {
			continue
		}
		matches = append(matches, platform.ToolMatch{
			Extension:   extensionName,
			Name:        tool.name,
			Description: tool.description,
			Schema:      tool.schema,
			Score:       score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	return fields
}

// toolSchemaJSON renders a tool's input schema. Tools declared with a raw
// schema carry it verbatim; reflected schemas are marshaled.
func toolSchemaJSON(tool mcp.Tool) string {
	if len(tool.RawInputSchema) > 0 {
		return string(tool.RawInputSchema)
	}
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return ""
	}
	return string(raw)
}

// overlap is the fraction of query terms found among the tool's terms.
func overlap(query, terms []string) float32 {
	if len(query) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	hits := 0
	for _, q := range query {
		if _, ok := set[q]; ok {
			hits++
		}
	}
	return float32(hits) / float32(len(query))
}
