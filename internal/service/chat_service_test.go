package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"pathfinder/internal/config"
	"pathfinder/internal/domain"
	"pathfinder/internal/keywords"
	"pathfinder/internal/registry"
	"pathfinder/internal/retrieval"
)

// countingModel returns a fixed reply and counts generation calls so tests can
// observe cache hits and misses.
type countingModel struct {
	reply string
	calls int32
}

func (m *countingModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	atomic.AddInt32(&m.calls, 1)
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *countingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, nil, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string, int) ([]domain.DocumentChunk, error) {
	return []domain.DocumentChunk{{Content: "Careers in technology."}}, nil
}

type englishDetector struct{}

func (englishDetector) Detect(string) string { return "en" }

func newTestService(t *testing.T, model llms.Model) *ChatService {
	t.Helper()
	reg := registry.New(&config.LLMConfig{DefaultModel: "fake"})
	reg.Register("fake", func(context.Context, string, *config.LLMConfig) (llms.Model, error) {
		return model, nil
	})
	o := retrieval.NewOrchestrator(reg, stubSearcher{}, englishDetector{}, nil, zap.NewNop())
	o.ReplayDelay = 0
	return NewChatService(o, keywords.New(), zap.NewNop())
}

func TestQuizRecommendationCached(t *testing.T) {
	model := &countingModel{reply: "Try software engineering."}
	s := newTestService(t, model)

	req := &domain.QuizRequest{Model: "fake", Answers: []string{"coding", "remote work"}}
	first, err := s.QuizRecommendation(context.Background(), req)
	require.NoError(t, err)

	// Same answers in a different order address the same entry.
	reordered := &domain.QuizRequest{Model: "fake", Answers: []string{"remote work", "coding"}}
	second, err := s.QuizRecommendation(context.Background(), reordered)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&model.calls))
}

func TestQuizRecommendationHistoryBypassesCache(t *testing.T) {
	model := &countingModel{reply: "Try software engineering."}
	s := newTestService(t, model)

	req := &domain.QuizRequest{
		Model:   "fake",
		Answers: []string{"coding"},
		History: []domain.ChatMessage{{Role: domain.RoleUser, Text: "tell me more"}},
	}

	_, err := s.QuizRecommendation(context.Background(), req)
	require.NoError(t, err)
	_, err = s.QuizRecommendation(context.Background(), req)
	require.NoError(t, err)

	// History makes the answer session-specific: generated twice, cached never.
	assert.Equal(t, int32(2), atomic.LoadInt32(&model.calls))
	assert.Equal(t, 0, s.quizCache.Len())
}

func TestQuizRecommendationHistoryDoesNotReadStaleEntry(t *testing.T) {
	model := &countingModel{reply: "Try software engineering."}
	s := newTestService(t, model)

	plain := &domain.QuizRequest{Model: "fake", Answers: []string{"coding"}}
	_, err := s.QuizRecommendation(context.Background(), plain)
	require.NoError(t, err)
	require.Equal(t, 1, s.quizCache.Len())

	withHistory := &domain.QuizRequest{
		Model:   "fake",
		Answers: []string{"coding"},
		History: []domain.ChatMessage{{Role: domain.RoleUser, Text: "more detail"}},
	}
	_, err = s.QuizRecommendation(context.Background(), withHistory)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&model.calls))
}

func TestAnalyzeCVCached(t *testing.T) {
	model := &countingModel{reply: "Consider data engineering."}
	s := newTestService(t, model)

	req := &domain.CVAnalysisRequest{
		Model:  "fake",
		CVText: "Experienced in machine learning, data analysis and SQL databases.",
	}

	first, err := s.AnalyzeCV(context.Background(), req)
	require.NoError(t, err)
	second, err := s.AnalyzeCV(context.Background(), req)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&model.calls))
}

func TestAnalyzeCVNoKeywords(t *testing.T) {
	model := &countingModel{reply: "unused"}
	s := newTestService(t, model)

	_, err := s.AnalyzeCV(context.Background(), &domain.CVAnalysisRequest{Model: "fake", CVText: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSignal)
	assert.Equal(t, int32(0), atomic.LoadInt32(&model.calls))
	assert.Equal(t, 0, s.cvCache.Len())
}

func TestChatDelegatesToOrchestrator(t *testing.T) {
	model := &countingModel{reply: "Hello."}
	s := newTestService(t, model)

	resp, err := s.Chat(context.Background(), &domain.ChatRequest{Message: "hi", Model: "fake"})
	require.NoError(t, err)
	assert.Equal(t, "Hello.", resp.Reply)
	assert.NotEmpty(t, resp.Sources)
}

func TestExtractCVTextEmptyUpload(t *testing.T) {
	s := newTestService(t, &countingModel{})

	_, err := s.ExtractCVText(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
