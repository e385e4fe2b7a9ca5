package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pathfinder/internal/cache"
	"pathfinder/internal/domain"
	"pathfinder/internal/extract"
	"pathfinder/internal/keywords"
	"pathfinder/internal/retrieval"
)

// pdfCacheSize bounds the extracted-text cache; uploaded files are larger and
// more numerous than quiz or CV requests, so this cache evicts.
const pdfCacheSize = 50

const quizPromptFormat = `Based on the following quiz answers, provide a career recommendation
from the knowledge base. Focus on job roles, required skills, and potential career paths.
If the knowledge base does not contain direct information, provide a general recommendation
and suggest further exploration. Do not make up information.

Quiz Answers: %s

Career Recommendation:`

const cvPromptFormat = `Analyze the following keywords from a CV and provide career recommendations,
suitable job roles, and skill development suggestions based on the
information provided in your knowledge base.
Focus on actionable advice and relevant career paths.

CV Keywords: %s

Career Analysis and Recommendation:`

// ChatService is the public entry point for chat, quiz and CV operations. It
// owns the response caches and intercepts model calls through them.
type ChatService struct {
	orchestrator *retrieval.Orchestrator
	extractor    *keywords.Extractor
	quizCache    *cache.ResponseCache
	cvCache      *cache.ResponseCache
	pdfCache     *cache.LRU
	logger       *zap.Logger
}

// NewChatService creates a chat service with empty caches.
func NewChatService(orchestrator *retrieval.Orchestrator, extractor *keywords.Extractor, logger *zap.Logger) *ChatService {
	return &ChatService{
		orchestrator: orchestrator,
		extractor:    extractor,
		quizCache:    cache.NewResponseCache(),
		cvCache:      cache.NewResponseCache(),
		pdfCache:     cache.NewLRU(pdfCacheSize),
		logger:       logger,
	}
}

// Chat answers a free-text question with retrieved sources.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	return s.orchestrator.Answer(ctx, req.Message, req.History, req.Model)
}

// ChatStream answers a free-text question as a stream of events.
func (s *ChatService) ChatStream(ctx context.Context, req *domain.ChatRequest) <-chan domain.StreamEvent {
	return s.orchestrator.Stream(ctx, req.Message, req.History, req.Model)
}

// QuizRecommendation turns quiz answers into a grounded recommendation,
// memoized by an order-independent key. Requests carrying history are
// session-specific and bypass the cache entirely.
func (s *ChatService) QuizRecommendation(ctx context.Context, req *domain.QuizRequest) (*domain.ChatResponse, error) {
	key := cache.QuizKey(req.Model, req.Answers)
	if len(req.History) == 0 {
		if resp, ok := s.quizCache.Get(key); ok {
			s.logger.Debug("quiz cache hit", zap.String("key", key))
			return resp, nil
		}
	}

	prompt := fmt.Sprintf(quizPromptFormat, strings.Join(req.Answers, ", "))
	resp, err := s.orchestrator.Answer(ctx, prompt, req.History, req.Model)
	if err != nil {
		return nil, err
	}

	if len(req.History) == 0 {
		s.quizCache.Put(key, resp)
	}
	return resp, nil
}

// AnalyzeCV distills the CV text into keywords and asks for a recommendation
// grounded on them, memoized by a content hash of the raw text. Raw CV text
// never reaches the model; only the de-identified keyword signal does.
func (s *ChatService) AnalyzeCV(ctx context.Context, req *domain.CVAnalysisRequest) (*domain.ChatResponse, error) {
	key := cache.CVKey(req.Model, req.CVText)
	if resp, ok := s.cvCache.Get(key); ok {
		s.logger.Debug("cv cache hit")
		return resp, nil
	}

	kws := s.extractor.Extract(req.CVText)
	if kws == "" {
		return nil, fmt.Errorf("%w: no keywords extracted from CV text", domain.ErrNoSignal)
	}
	s.logger.Info("extracted CV keywords", zap.String("keywords", kws))

	prompt := fmt.Sprintf(cvPromptFormat, kws)
	resp, err := s.orchestrator.Answer(ctx, prompt, nil, req.Model)
	if err != nil {
		return nil, err
	}

	s.cvCache.Put(key, resp)
	return resp, nil
}

// ExtractKeywords exposes the keyword extractor directly.
func (s *ChatService) ExtractKeywords(text string) string {
	return s.extractor.Extract(text)
}

// ExtractCVText pulls plain text from an uploaded PDF, memoized by a content
// hash of the bytes with LRU eviction.
func (s *ChatService) ExtractCVText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: uploaded file is empty", domain.ErrInvalidRequest)
	}

	key := cache.ContentKey(data)
	if text, ok := s.pdfCache.Get(key); ok {
		return text, nil
	}

	text, err := extract.PDFText(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted, document may be scanned", domain.ErrNoSignal)
	}

	s.pdfCache.Add(key, text)
	return text, nil
}
