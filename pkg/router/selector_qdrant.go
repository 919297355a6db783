package router

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	sdk "github.com/qdrant/go-client/qdrant"

	"github.com/theapemachine/mcp-platform-bridge/pkg/platform"
)

// QdrantConfig carries the connection settings for the qdrant selector.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// QdrantSelector is the vector-search selector backend: tool name and
// description are embedded and indexed per extension in a qdrant collection.
type QdrantSelector struct {
	client     *sdk.Client
	collection string
	embedder   Embedder
	dimensions uint64
}

var _ platform.ToolSelector = (*QdrantSelector)(nil)

// NewQdrantSelector connects to qdrant and ensures the tool collection
// exists.
func NewQdrantSelector(cfg QdrantConfig, embedder Embedder) (*QdrantSelector, error) {
	client, err := sdk.NewClient(&sdk.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	selector := &QdrantSelector{
		client:     client,
		collection: cfg.Collection,
		embedder:   embedder,
		dimensions: 3072, // text-embedding-3-large
	}
	if err := selector.ensureCollection(); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return selector, nil
}

// IndexTools replaces the indexed tools of one extension.
func (s *QdrantSelector) IndexTools(ctx context.Context, extensionName string, tools []mcp.Tool) error {
	// Replace semantics: stale tools of a previous instance must not
	// survive a re-index.
	if err := s.RemoveTools(ctx, extensionName); err != nil {
		return err
	}
	if len(tools) == 0 {
		return nil
	}

	texts := make([]string, len(tools))
	for i, tool := range tools {
		texts[i] = tool.Name + ": " + tool.Description
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	points := make([]*sdk.PointStruct, len(tools))
	for i, tool := range tools {
		schema := toolSchemaJSON(tool)
		points[i] = &sdk.PointStruct{
			Id:      sdk.NewID(pointID(extensionName, tool.Name)),
			Vectors: sdk.NewVectors(vectors[i]...),
			Payload: sdk.NewValueMap(map[string]any{
				"extension":   extensionName,
				"name":        tool.Name,
				"description": tool.Description,
				"schema":      schema,
			}),
		}
	}

	waitUpsert := true
	_, err = s.client.Upsert(ctx, &sdk.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &waitUpsert,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert tool points: %w", err)
	}
	return nil
}

// RemoveTools drops every indexed tool of one extension.
func (s *QdrantSelector) RemoveTools(ctx context.Context, extensionName string) error {
	waitDelete := true
	_, err := s.client.Delete(ctx, &sdk.DeletePoints{
		CollectionName: s.collection,
		Wait:           &waitDelete,
		Points: sdk.NewPointsSelectorFilter(&sdk.Filter{
			Must: []*sdk.Condition{sdk.NewMatch("extension", extensionName)},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete tool points: %w", err)
	}
	return nil
}

// Search embeds the query and returns the extension's k nearest tools.
func (s *QdrantSelector) Search(ctx context.Context, extensionName, query string, k int) ([]platform.ToolMatch, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &sdk.QueryPoints{
		CollectionName: s.collection,
		Query:          sdk.NewQuery(vectors[0]...),
		Filter: &sdk.Filter{
			Must: []*sdk.Condition{sdk.NewMatch("extension", extensionName)},
		},
		Limit:       &limit,
		WithPayload: sdk.NewWithPayloadInclude("extension", "name", "description", "schema"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search tools: %w", err)
	}

	matches := make([]platform.ToolMatch, 0, len(points))
	for _, point := range points {
		matches = append(matches, platform.ToolMatch{
			Extension:   payloadString(point, "extension"),
			Name:        payloadString(point, "name"),
			Description: payloadString(point, "description"),
			Schema:      payloadString(point, "schema"),
			Score:       point.Score,
		})
	}
	return matches, nil
}

func (s *QdrantSelector) ensureCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == s.collection {
			return nil
		}
	}

	defaultSegmentNumber := uint64(2)
	err = s.client.CreateCollection(ctx, &sdk.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: sdk.NewVectorsConfig(&sdk.VectorParams{
			Size:     s.dimensions,
			Distance: sdk.Distance_Cosine,
		}),
		OptimizersConfig: &sdk.OptimizersConfigDiff{
			DefaultSegmentNumber: &defaultSegmentNumber,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func pointID(extensionName, toolName string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("qdrant://tools/"+extensionName+"/"+toolName)).String()
}

func payloadString(point *sdk.ScoredPoint, key string) string {
	if value, ok := point.Payload[key]; ok {
		return value.GetStringValue()
	}
	return ""
}
