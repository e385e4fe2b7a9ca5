// Package registry owns the process-wide mapping from model names to backend
// handles and retrieval chains. Handles are constructed lazily, at most once
// per name, and reused for the process lifetime.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/prompts"

	"pathfinder/internal/config"
	"pathfinder/internal/domain"
)

// Names with dedicated constructors. Any other name is assumed to be a
// locally-served model.
const (
	ModelGemini        = "gemini"
	ModelCustomMistral = "custom_mistral"
)

// Retrieval depth for every chain.
const DefaultTopK = 2

// Builder constructs a backend handle for a model name.
type Builder func(ctx context.Context, name string, cfg *config.LLMConfig) (llms.Model, error)

// Chain bundles a model handle with a fixed retrieval depth and the grounded
// prompt template. One chain exists per model name, one-to-one with its
// handle.
type Chain struct {
	Name   string
	Model  llms.Model
	TopK   int
	Prompt prompts.PromptTemplate
}

// Registry lazily constructs and caches model handles and retrieval chains by
// name. Construction is idempotent under concurrent first access: the mutex
// scope is the registry, never the whole process.
type Registry struct {
	mu       sync.Mutex
	cfg      *config.LLMConfig
	builders map[string]Builder
	fallback Builder
	models   map[string]llms.Model
	chains   map[string]*Chain
}

// New creates a registry with the default backend constructors.
func New(cfg *config.LLMConfig) *Registry {
	return &Registry{
		cfg: cfg,
		builders: map[string]Builder{
			ModelGemini:        buildGemini,
			ModelCustomMistral: buildMistral,
		},
		fallback: buildOllama,
		models:   make(map[string]llms.Model),
		chains:   make(map[string]*Chain),
	}
}

// Register overrides the constructor for a model name. Test hooks and future
// backend families go through here.
func (r *Registry) Register(name string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = b
}

// Model returns the cached handle for name, constructing it on first access.
func (r *Registry) Model(ctx context.Context, name string) (llms.Model, error) {
	if name == "" {
		name = r.cfg.DefaultModel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modelLocked(ctx, name)
}

func (r *Registry) modelLocked(ctx context.Context, name string) (llms.Model, error) {
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	builder, ok := r.builders[name]
	if !ok {
		builder = r.fallback
	}
	m, err := builder(ctx, name, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("construct model %q: %w", name, err)
	}
	r.models[name] = m
	return m, nil
}

// Chain returns the retrieval chain for name, constructing model and chain on
// first access.
func (r *Registry) Chain(ctx context.Context, name string) (*Chain, error) {
	if name == "" {
		name = r.cfg.DefaultModel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chains[name]; ok {
		return c, nil
	}
	m, err := r.modelLocked(ctx, name)
	if err != nil {
		return nil, err
	}
	c := &Chain{
		Name:   name,
		Model:  m,
		TopK:   DefaultTopK,
		Prompt: AnswerPrompt(),
	}
	r.chains[name] = c
	return c, nil
}

func buildGemini(ctx context.Context, _ string, cfg *config.LLMConfig) (llms.Model, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured: %w", domain.ErrMissingCredential)
	}
	return googleai.New(ctx,
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.GeminiModel),
	)
}

func buildMistral(_ context.Context, _ string, cfg *config.LLMConfig) (llms.Model, error) {
	if cfg.MistralAPIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY not configured: %w", domain.ErrMissingCredential)
	}
	return mistral.New(
		mistral.WithAPIKey(cfg.MistralAPIKey),
		mistral.WithModel(cfg.MistralModel),
	)
}

func buildOllama(_ context.Context, name string, cfg *config.LLMConfig) (llms.Model, error) {
	opts := []ollama.Option{ollama.WithModel(name)}
	if cfg.OllamaURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.OllamaURL))
	}
	return ollama.New(opts...)
}
