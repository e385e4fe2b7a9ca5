package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"pathfinder/internal/domain"
)

// Stream answers question as an ordered event sequence: one sources event as
// soon as retrieval completes, then token events carrying the cumulative text
// so far, then exactly one final token event. Failures degrade to a single
// error event. The channel is closed when the sequence ends; closing is the
// terminator.
func (o *Orchestrator) Stream(ctx context.Context, question string, history []domain.ChatMessage, model string) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent, 64)

	go func() {
		defer close(events)

		chain, chunks, err := o.retrieve(ctx, question, model)
		if err != nil {
			o.logger.Warn("stream retrieval failed", zap.Error(err))
			events <- domain.StreamEvent{Type: domain.EventError, Error: err.Error()}
			return
		}
		if chunks == nil {
			chunks = []domain.DocumentChunk{}
		}

		// Sources go out before any generation token exists so clients can
		// render citations while generation is in flight.
		if !send(ctx, events, domain.StreamEvent{Type: domain.EventSources, Sources: chunks}) {
			return
		}

		prompt, err := renderPrompt(chain, question, history, chunks)
		if err != nil {
			events <- domain.StreamEvent{Type: domain.EventError, Error: err.Error()}
			return
		}

		if o.isBurmese(question) {
			o.streamTranslated(ctx, events, chain.Model, prompt)
			return
		}

		var current strings.Builder
		reply, err := llms.GenerateFromSinglePrompt(ctx, chain.Model, prompt,
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				current.Write(chunk)
				if !send(ctx, events, domain.StreamEvent{Type: domain.EventToken, Content: current.String()}) {
					return ctx.Err()
				}
				return nil
			}),
		)
		if err != nil {
			o.logger.Warn("stream generation failed", zap.Error(err))
			events <- domain.StreamEvent{Type: domain.EventError, Error: err.Error()}
			return
		}

		final := reply
		if final == "" {
			final = current.String()
		}
		send(ctx, events, domain.StreamEvent{Type: domain.EventToken, Content: final, IsFinal: true})
	}()

	return events
}

// streamTranslated handles Burmese input. Translation needs the full text, so
// generation runs to completion untranslated, the reply is translated once,
// then replayed word by word as a synthetic token stream to preserve the same
// observable contract.
func (o *Orchestrator) streamTranslated(ctx context.Context, events chan<- domain.StreamEvent, model llms.Model, prompt string) {
	reply, err := llms.GenerateFromSinglePrompt(ctx, model, prompt)
	if err != nil {
		events <- domain.StreamEvent{Type: domain.EventError, Error: err.Error()}
		return
	}

	translated, err := o.translate(ctx, reply)
	if err != nil {
		events <- domain.StreamEvent{Type: domain.EventError, Error: err.Error()}
		return
	}

	words := strings.Fields(translated)
	var current strings.Builder
	for i, word := range words {
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
		ev := domain.StreamEvent{
			Type:    domain.EventToken,
			Content: current.String(),
			IsFinal: i == len(words)-1,
		}
		if !send(ctx, events, ev) {
			return
		}
		if o.ReplayDelay > 0 && i < len(words)-1 {
			time.Sleep(o.ReplayDelay)
		}
	}
	if len(words) == 0 {
		send(ctx, events, domain.StreamEvent{Type: domain.EventToken, Content: translated, IsFinal: true})
	}
}

func send(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
