// Package retrieval assembles context-grounded prompts from retrieved corpus
// chunks and conversation history, invokes the selected model backend, and
// exposes both whole-answer and token-streaming entry points.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"pathfinder/internal/domain"
	"pathfinder/internal/registry"
)

// historyWindow bounds how many trailing turns of history enter the prompt.
const historyWindow = 5

// Searcher is the external similarity-search capability over the corpus.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.DocumentChunk, error)
}

// LanguageDetector reports the ISO code of the dominant language of a text.
type LanguageDetector interface {
	Detect(text string) string
}

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Orchestrator builds grounded prompts and drives generation. Retrieval and
// generation always run in the corpus's native language; Burmese replies are
// translated after generation, never before.
type Orchestrator struct {
	registry   *registry.Registry
	searcher   Searcher
	detector   LanguageDetector
	translator Translator
	logger     *zap.Logger

	// ReplayDelay paces the synthetic word-by-word replay of translated
	// responses. Tests set it to zero.
	ReplayDelay time.Duration
}

// NewOrchestrator creates an orchestrator. searcher, detector and translator
// may be nil; affected requests then degrade to a not-available error.
func NewOrchestrator(reg *registry.Registry, searcher Searcher, detector LanguageDetector, translator Translator, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		registry:    reg,
		searcher:    searcher,
		detector:    detector,
		translator:  translator,
		logger:      logger,
		ReplayDelay: 50 * time.Millisecond,
	}
}

// Answer retrieves the top-k chunks for question, renders the grounded prompt
// and invokes the model. The returned sources are exactly the chunks used to
// build the context for this answer.
func (o *Orchestrator) Answer(ctx context.Context, question string, history []domain.ChatMessage, model string) (*domain.ChatResponse, error) {
	chain, chunks, err := o.retrieve(ctx, question, model)
	if err != nil {
		return nil, err
	}

	prompt, err := renderPrompt(chain, question, history, chunks)
	if err != nil {
		return nil, err
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, chain.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if o.isBurmese(question) {
		reply, err = o.translate(ctx, reply)
		if err != nil {
			return nil, err
		}
	}

	if chunks == nil {
		chunks = []domain.DocumentChunk{}
	}
	return &domain.ChatResponse{Reply: reply, Sources: chunks}, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, question, model string) (*registry.Chain, []domain.DocumentChunk, error) {
	chain, err := o.registry.Chain(ctx, model)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: retrieval chain for %q: %v", domain.ErrNotAvailable, model, err)
	}
	if o.searcher == nil {
		return nil, nil, fmt.Errorf("%w: vector store not configured", domain.ErrNotAvailable)
	}
	chunks, err := o.searcher.Search(ctx, question, chain.TopK)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return chain, chunks, nil
}

func (o *Orchestrator) isBurmese(text string) bool {
	return o.detector != nil && o.detector.Detect(text) == "my"
}

func (o *Orchestrator) translate(ctx context.Context, reply string) (string, error) {
	if o.translator == nil {
		return "", fmt.Errorf("%w: translator not configured", domain.ErrNotAvailable)
	}
	translated, err := o.translator.Translate(ctx, reply, "my")
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return translated, nil
}

func renderPrompt(chain *registry.Chain, question string, history []domain.ChatMessage, chunks []domain.DocumentChunk) (string, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	prompt, err := chain.Prompt.Format(map[string]any{
		"context":      strings.Join(texts, "\n\n"),
		"chat_history": renderHistory(history),
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}

func renderHistory(history []domain.ChatMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	lines := make([]string, len(history))
	for i, msg := range history {
		lines[i] = msg.Role + ": " + msg.Text
	}
	return strings.Join(lines, "\n")
}
