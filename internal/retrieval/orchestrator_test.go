package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"pathfinder/internal/config"
	"pathfinder/internal/domain"
	"pathfinder/internal/registry"
)

// streamModel is a scripted backend. It replays chunks through the streaming
// callback when one is set and then returns reply as the whole completion.
type streamModel struct {
	chunks  []string
	reply   string
	err     error
	prompts []string
}

func (m *streamModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, c := range m.chunks {
			if err := opts.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *streamModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

type fakeSearcher struct {
	chunks []domain.DocumentChunk
	err    error
	lastK  int
}

func (s *fakeSearcher) Search(_ context.Context, _ string, k int) ([]domain.DocumentChunk, error) {
	s.lastK = k
	return s.chunks, s.err
}

type fixedDetector struct{ code string }

func (d fixedDetector) Detect(string) string { return d.code }

type upperTranslator struct {
	err    error
	target string
}

func (tr *upperTranslator) Translate(_ context.Context, text, target string) (string, error) {
	tr.target = target
	if tr.err != nil {
		return "", tr.err
	}
	return "[my] " + text, nil
}

func newTestRegistry(model llms.Model) *registry.Registry {
	r := registry.New(&config.LLMConfig{DefaultModel: "fake"})
	r.Register("fake", func(context.Context, string, *config.LLMConfig) (llms.Model, error) {
		return model, nil
	})
	return r
}

func testChunks() []domain.DocumentChunk {
	return []domain.DocumentChunk{
		{Content: "Data analysts interpret datasets.", Metadata: domain.ChunkMetadata{JobTitle: "Data Analyst", SourceIndex: 0}},
		{Content: "Software engineers build systems.", Metadata: domain.ChunkMetadata{JobTitle: "Software Engineer", SourceIndex: 1}},
	}
}

func TestAnswerGroundsPromptInRetrievedChunks(t *testing.T) {
	model := &streamModel{reply: "Consider data analysis."}
	searcher := &fakeSearcher{chunks: testChunks()}
	o := NewOrchestrator(newTestRegistry(model), searcher, fixedDetector{"en"}, nil, zap.NewNop())

	history := []domain.ChatMessage{{Role: domain.RoleUser, Text: "hi"}}
	resp, err := o.Answer(context.Background(), "what career fits me?", history, "fake")
	require.NoError(t, err)

	assert.Equal(t, "Consider data analysis.", resp.Reply)
	assert.Equal(t, testChunks(), resp.Sources)
	assert.Equal(t, registry.DefaultTopK, searcher.lastK)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "Data analysts interpret datasets.")
	assert.Contains(t, prompt, "Software engineers build systems.")
	assert.Contains(t, prompt, "what career fits me?")
	assert.Contains(t, prompt, "user: hi")
}

func TestAnswerEmptyRetrievalStillAnswers(t *testing.T) {
	model := &streamModel{reply: "I don't know."}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{}, fixedDetector{"en"}, nil, zap.NewNop())

	resp, err := o.Answer(context.Background(), "unknown topic", nil, "fake")
	require.NoError(t, err)

	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "I don't know.", resp.Reply)
}

func TestAnswerWithoutSearcher(t *testing.T) {
	o := NewOrchestrator(newTestRegistry(&streamModel{}), nil, fixedDetector{"en"}, nil, zap.NewNop())

	_, err := o.Answer(context.Background(), "question", nil, "fake")
	assert.ErrorIs(t, err, domain.ErrNotAvailable)
}

func TestAnswerSearcherFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("collection offline")}
	o := NewOrchestrator(newTestRegistry(&streamModel{}), searcher, fixedDetector{"en"}, nil, zap.NewNop())

	_, err := o.Answer(context.Background(), "question", nil, "fake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval failed")
}

func TestAnswerBurmeseTranslatedAfterGeneration(t *testing.T) {
	model := &streamModel{reply: "Consider teaching."}
	tr := &upperTranslator{}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{chunks: testChunks()}, fixedDetector{"my"}, tr, zap.NewNop())

	resp, err := o.Answer(context.Background(), "မင်္ဂလာပါ", nil, "fake")
	require.NoError(t, err)

	assert.Equal(t, "[my] Consider teaching.", resp.Reply)
	assert.Equal(t, "my", tr.target)
}

func TestAnswerBurmeseWithoutTranslator(t *testing.T) {
	o := NewOrchestrator(newTestRegistry(&streamModel{reply: "x"}), &fakeSearcher{}, fixedDetector{"my"}, nil, zap.NewNop())

	_, err := o.Answer(context.Background(), "မင်္ဂလာပါ", nil, "fake")
	assert.ErrorIs(t, err, domain.ErrNotAvailable)
}

func TestRenderHistoryKeepsTrailingWindow(t *testing.T) {
	var history []domain.ChatMessage
	for _, text := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		history = append(history, domain.ChatMessage{Role: domain.RoleUser, Text: text})
	}

	rendered := renderHistory(history)
	assert.NotContains(t, rendered, "one")
	assert.NotContains(t, rendered, "two")
	for _, text := range []string{"three", "four", "five", "six", "seven"} {
		assert.Contains(t, rendered, "user: "+text)
	}
	assert.Len(t, strings.Split(rendered, "\n"), historyWindow)
}

func TestRenderHistoryEmpty(t *testing.T) {
	assert.Equal(t, "", renderHistory(nil))
}
