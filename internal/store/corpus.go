package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"pathfinder/internal/config"
	"pathfinder/internal/domain"
)

type jobRecord struct {
	JobTitle        string `json:"job_title"`
	UnifiedDocument string `json:"unified_document"`
}

// loadCorpus reads the processed job corpus, splits each document into
// overlapping chunks and embeds them into the collection.
func (s *VectorStore) loadCorpus(ctx context.Context, cfg *config.CorpusConfig) error {
	data, err := os.ReadFile(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("corpus file %s: %w", cfg.DataPath, err)
	}

	var records []jobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("corpus file %s is empty: %w", cfg.DataPath, domain.ErrNotAvailable)
	}

	var docs []chromem.Document
	for i, record := range records {
		pieces, err := splitText(record.UnifiedDocument, cfg.ChunkSize, cfg.ChunkOverlap)
		if err != nil {
			return err
		}
		for _, piece := range pieces {
			docs = append(docs, chromem.Document{
				ID:      uuid.New().String(),
				Content: piece,
				Metadata: map[string]string{
					"job_title":    record.JobTitle,
					"source_index": strconv.Itoa(i),
				},
			})
		}
	}

	s.logger.Info("embedding corpus",
		zap.Int("documents", len(records)),
		zap.Int("chunks", len(docs)),
	)
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}
	return nil
}

func splitText(text string, chunkSize, chunkOverlap int) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)
	pieces, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	return pieces, nil
}
