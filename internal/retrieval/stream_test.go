package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pathfinder/internal/domain"
)

func collect(t *testing.T, events <-chan domain.StreamEvent) []domain.StreamEvent {
	t.Helper()
	var out []domain.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestStreamEventOrder(t *testing.T) {
	model := &streamModel{
		chunks: []string{"Consider ", "data ", "analysis."},
		reply:  "Consider data analysis.",
	}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{chunks: testChunks()}, fixedDetector{"en"}, nil, zap.NewNop())
	o.ReplayDelay = 0

	events := collect(t, o.Stream(context.Background(), "what career fits me?", nil, "fake"))
	require.NotEmpty(t, events)

	// Sources arrive first, before any token.
	assert.Equal(t, domain.EventSources, events[0].Type)
	assert.Equal(t, testChunks(), events[0].Sources)

	tokens := events[1:]
	require.Len(t, tokens, 4)
	for _, ev := range tokens {
		assert.Equal(t, domain.EventToken, ev.Type)
	}

	// Cumulative contract: every token carries the full text so far, so each
	// event's content extends the previous one.
	for i := 1; i < len(tokens); i++ {
		assert.True(t, strings.HasPrefix(tokens[i].Content, tokens[i-1].Content),
			"token %d %q does not extend %q", i, tokens[i].Content, tokens[i-1].Content)
	}

	var finals int
	for _, ev := range tokens {
		if ev.IsFinal {
			finals++
		}
	}
	assert.Equal(t, 1, finals)
	last := tokens[len(tokens)-1]
	assert.True(t, last.IsFinal)
	assert.Equal(t, "Consider data analysis.", last.Content)
}

func TestStreamEmptyRetrievalSendsEmptySources(t *testing.T) {
	model := &streamModel{reply: "I don't know."}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{}, fixedDetector{"en"}, nil, zap.NewNop())

	events := collect(t, o.Stream(context.Background(), "unknown", nil, "fake"))
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventSources, events[0].Type)
	assert.NotNil(t, events[0].Sources)
	assert.Empty(t, events[0].Sources)

	last := events[len(events)-1]
	assert.True(t, last.IsFinal)
	assert.Equal(t, "I don't know.", last.Content)
}

func TestStreamRetrievalFailure(t *testing.T) {
	o := NewOrchestrator(newTestRegistry(&streamModel{}), nil, fixedDetector{"en"}, nil, zap.NewNop())

	events := collect(t, o.Stream(context.Background(), "question", nil, "fake"))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
	assert.NotEmpty(t, events[0].Error)
}

func TestStreamGenerationFailure(t *testing.T) {
	model := &streamModel{err: errors.New("backend timeout")}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{chunks: testChunks()}, fixedDetector{"en"}, nil, zap.NewNop())

	events := collect(t, o.Stream(context.Background(), "question", nil, "fake"))
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventSources, events[0].Type)
	assert.Equal(t, domain.EventError, events[1].Type)
	assert.Contains(t, events[1].Error, "backend timeout")
}

func TestStreamBurmeseReplaysTranslatedWords(t *testing.T) {
	model := &streamModel{reply: "Consider teaching careers."}
	tr := &upperTranslator{}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{chunks: testChunks()}, fixedDetector{"my"}, tr, zap.NewNop())
	o.ReplayDelay = 0

	events := collect(t, o.Stream(context.Background(), "မင်္ဂလာပါ", nil, "fake"))
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventSources, events[0].Type)

	tokens := events[1:]
	// "[my] Consider teaching careers." replays as four words.
	require.Len(t, tokens, 4)
	assert.Equal(t, "[my]", tokens[0].Content)
	assert.Equal(t, "[my] Consider", tokens[1].Content)
	assert.Equal(t, "[my] Consider teaching", tokens[2].Content)
	assert.Equal(t, "[my] Consider teaching careers.", tokens[3].Content)

	for i, ev := range tokens {
		assert.Equal(t, domain.EventToken, ev.Type)
		assert.Equal(t, i == len(tokens)-1, ev.IsFinal, "token %d", i)
	}
}

func TestStreamBurmeseTranslationFailure(t *testing.T) {
	model := &streamModel{reply: "Consider teaching."}
	tr := &upperTranslator{err: errors.New("quota exceeded")}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{chunks: testChunks()}, fixedDetector{"my"}, tr, zap.NewNop())
	o.ReplayDelay = 0

	events := collect(t, o.Stream(context.Background(), "မင်္ဂလာပါ", nil, "fake"))
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventSources, events[0].Type)
	assert.Equal(t, domain.EventError, events[1].Type)
	assert.Contains(t, events[1].Error, "quota exceeded")
}

func TestStreamChannelCloses(t *testing.T) {
	model := &streamModel{reply: "done"}
	o := NewOrchestrator(newTestRegistry(model), &fakeSearcher{}, fixedDetector{"en"}, nil, zap.NewNop())

	events := o.Stream(context.Background(), "question", nil, "fake")
	for range events {
	}
	_, open := <-events
	assert.False(t, open)
}
