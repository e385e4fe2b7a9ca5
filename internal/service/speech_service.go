package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pathfinder/internal/domain"
	"pathfinder/internal/transcribe"
)

// SpeechService converts uploaded audio into text through the external
// transcription capability.
type SpeechService struct {
	client *transcribe.Client
	logger *zap.Logger
}

// NewSpeechService creates a speech-to-text service. client may be nil when
// transcription is not configured.
func NewSpeechService(client *transcribe.Client, logger *zap.Logger) *SpeechService {
	return &SpeechService{client: client, logger: logger}
}

// Transcribe converts audio bytes to text with the detected language.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, filename string) (*domain.Transcription, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: transcription not configured", domain.ErrNotAvailable)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: uploaded audio is empty", domain.ErrInvalidRequest)
	}
	return s.client.Transcribe(ctx, audio, filename)
}
