package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"

	"pathfinder/internal/domain"
	"pathfinder/internal/registry"
	"pathfinder/internal/repository"
	"pathfinder/internal/store"
)

// sourceChunkSize slices fetched source articles so each generated entry sees
// a different part of the material.
const sourceChunkSize = 4000

const sectionTemplate = `You are an AI knowledge extractor. Your task is to generate a section of a knowledge base for a specific job title based on a provided article summary.

Job Title: "{{.topic}}"
Section to Generate: "{{.section}}"

Article Summary:
{{.source_text}}

Instructions:
- Based on the article summary, generate the content for the specified section.
- The content should be a concise and informative paragraph.
- Respond ONLY with the raw text content for the section. Do not add any extra titles, formatting, or explanations.`

// TopicSource fetches reference material for a job topic.
type TopicSource interface {
	Fetch(ctx context.Context, topic string) (string, error)
}

// KBService generates knowledge-base entries for job topics. All topics of a
// request are generated in parallel with partial-failure semantics: a failed
// topic is logged and excluded, the rest still contribute.
type KBService struct {
	registry *registry.Registry
	source   TopicSource
	repo     *repository.KBRepository
	store    *store.VectorStore
	model    string
	prompt   prompts.PromptTemplate
	logger   *zap.Logger
}

// NewKBService creates a knowledge-base generation service. repo and store
// are optional; when present, generated entries are persisted and indexed.
func NewKBService(reg *registry.Registry, source TopicSource, repo *repository.KBRepository, vs *store.VectorStore, model string, logger *zap.Logger) *KBService {
	return &KBService{
		registry: reg,
		source:   source,
		repo:     repo,
		store:    vs,
		model:    model,
		prompt:   prompts.NewPromptTemplate(sectionTemplate, []string{"topic", "section", "source_text"}),
		logger:   logger,
	}
}

// Generate produces knowledge-base entries for every topic, launched together
// and awaited jointly.
func (s *KBService) Generate(ctx context.Context, topics []domain.KBTopic) ([]domain.KBEntry, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics given", domain.ErrInvalidRequest)
	}

	results := make([][]domain.KBEntry, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic domain.KBTopic) {
			defer wg.Done()
			entries, err := s.generateTopic(ctx, topic)
			if err != nil {
				s.logger.Warn("knowledge-base topic failed",
					zap.String("topic", topic.Name),
					zap.Error(err),
				)
				return
			}
			results[i] = entries
		}(i, topic)
	}
	wg.Wait()

	var all []domain.KBEntry
	for _, entries := range results {
		all = append(all, entries...)
	}

	s.persist(ctx, all)
	return all, nil
}

func (s *KBService) generateTopic(ctx context.Context, topic domain.KBTopic) ([]domain.KBEntry, error) {
	model, err := s.registry.Model(ctx, s.model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAvailable, err)
	}

	source, err := s.source.Fetch(ctx, topic.Name)
	if err != nil {
		return nil, err
	}
	if source == "" {
		s.logger.Warn("no source material for topic", zap.String("topic", topic.Name))
		return nil, nil
	}

	chunks := chunkBySize(source, sourceChunkSize)
	numEntries := topic.NumEntries
	if numEntries <= 0 {
		numEntries = 1
	}

	var entries []domain.KBEntry
	for i := 0; i < numEntries; i++ {
		sourceText := chunks[i%len(chunks)]
		entry := domain.KBEntry{Title: topic.Name}
		for _, sectionTitle := range topic.Sections {
			content, err := s.generateSection(ctx, model, topic.Name, sectionTitle, sourceText)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", sectionTitle, err)
			}
			entry.Sections = append(entry.Sections, domain.KBSection{
				Title:   sectionTitle,
				Content: content,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *KBService) generateSection(ctx context.Context, model llms.Model, topic, section, sourceText string) (string, error) {
	prompt, err := s.prompt.Format(map[string]any{
		"topic":       topic,
		"section":     section,
		"source_text": sourceText,
	})
	if err != nil {
		return "", err
	}
	return llms.GenerateFromSinglePrompt(ctx, model, prompt)
}

// persist stores and indexes generated entries best-effort; storage failures
// must not fail a generation that already succeeded.
func (s *KBService) persist(ctx context.Context, entries []domain.KBEntry) {
	if s.repo != nil {
		for i := range entries {
			if err := s.repo.SaveEntry(&entries[i]); err != nil {
				s.logger.Warn("failed to persist kb entry",
					zap.String("topic", entries[i].Title),
					zap.Error(err),
				)
			}
		}
	}
	if s.store != nil {
		if err := s.store.AddEntries(ctx, entries, 500, 100); err != nil {
			s.logger.Warn("failed to index kb entries", zap.Error(err))
		}
	}
}

func chunkBySize(text string, size int) []string {
	if len(text) <= size {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
