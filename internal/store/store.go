// Package store exposes the job-knowledge corpus as a similarity-search
// capability over an embedded chromem-go vector store.
package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"pathfinder/internal/config"
	"pathfinder/internal/domain"
)

// VectorStore wraps a persistent chromem collection of corpus chunks.
type VectorStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

// New opens (or creates) the persistent vector store. If the collection is
// empty and a corpus file is configured, the corpus is chunked and embedded.
func New(ctx context.Context, cfg *config.CorpusConfig, logger *zap.Logger) (*VectorStore, error) {
	db, err := chromem.NewPersistentDB(cfg.DBPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	embed := chromem.NewEmbeddingFuncOllama(cfg.EmbeddingModel, cfg.OllamaURL)
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	s := &VectorStore{db: db, collection: collection, logger: logger}

	if collection.Count() == 0 {
		if err := s.loadCorpus(ctx, cfg); err != nil {
			return nil, err
		}
	}
	logger.Info("vector store ready", zap.Int("chunks", collection.Count()))
	return s, nil
}

// Search performs a similarity query and returns the top-k chunks. The
// requested depth is clamped to the collection size.
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]domain.DocumentChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	chunks := make([]domain.DocumentChunk, len(results))
	for i, r := range results {
		idx, _ := strconv.Atoi(r.Metadata["source_index"])
		chunks[i] = domain.DocumentChunk{
			Content: r.Content,
			Metadata: domain.ChunkMetadata{
				JobTitle:    r.Metadata["job_title"],
				SourceIndex: idx,
			},
		}
	}
	return chunks, nil
}

// AddEntries chunks generated knowledge-base entries and adds them to the
// collection so later retrieval can ground on them.
func (s *VectorStore) AddEntries(ctx context.Context, entries []domain.KBEntry, chunkSize, chunkOverlap int) error {
	var docs []chromem.Document
	for _, entry := range entries {
		for _, section := range entry.Sections {
			if section.Content == "" {
				continue
			}
			pieces, err := splitText(section.Content, chunkSize, chunkOverlap)
			if err != nil {
				return err
			}
			for _, piece := range pieces {
				docs = append(docs, chromem.Document{
					ID:      uuid.New().String(),
					Content: piece,
					Metadata: map[string]string{
						"job_title": entry.Title,
						"section":   section.Title,
					},
				})
			}
		}
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (s *VectorStore) Count() int {
	return s.collection.Count()
}
