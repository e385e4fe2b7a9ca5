package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pathfinder/internal/domain"
	"pathfinder/internal/retrieval"
	"pathfinder/internal/service"
)

// endOfStream is the sentinel line closing every SSE response.
const endOfStream = "[DONE]"

// Handler handles API requests
type Handler struct {
	chat     *service.ChatService
	kb       *service.KBService
	speech   *service.SpeechService
	searcher retrieval.Searcher
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(chat *service.ChatService, kb *service.KBService, speech *service.SpeechService, searcher retrieval.Searcher, logger *zap.Logger) *Handler {
	return &Handler{chat: chat, kb: kb, speech: speech, searcher: searcher, logger: logger}
}

// Chat handles a chat message
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chat.Chat(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatStream handles a streaming chat message (SSE)
func (h *Handler) ChatStream(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setStreamHeaders(c)
	events := h.chat.ChatStream(c.Request.Context(), &req)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			fmt.Fprintf(w, "data: %s\n\n", endOfStream)
			return false
		}
		writeEvent(w, ev)
		return true
	})
}

// Quiz handles a career-quiz recommendation
func (h *Handler) Quiz(c *gin.Context) {
	var req domain.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chat.QuizRecommendation(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeCV handles keyword-grounded CV analysis
func (h *Handler) AnalyzeCV(c *gin.Context) {
	var req domain.CVAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chat.AnalyzeCV(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadCV extracts text from an uploaded CV file
func (h *Handler) UploadCV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.fail(c, err)
		return
	}

	text, err := h.chat.ExtractCVText(data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Search performs a raw similarity search over the corpus
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 3 characters"})
		return
	}
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vector store is not available"})
		return
	}

	chunks, err := h.searcher.Search(c.Request.Context(), query, 3)
	if err != nil {
		h.fail(c, err)
		return
	}
	if chunks == nil {
		chunks = []domain.DocumentChunk{}
	}
	c.JSON(http.StatusOK, chunks)
}

// GenerateKB generates knowledge-base entries for the requested topics
func (h *Handler) GenerateKB(c *gin.Context) {
	var req domain.KBGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.kb.Generate(c.Request.Context(), req.Topics)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []domain.KBEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// SpeechToText transcribes an uploaded audio file
func (h *Handler) SpeechToText(c *gin.Context) {
	file, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.speech.Transcribe(c.Request.Context(), data, file.Filename)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotAvailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNoSignal), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func setStreamHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
}

// writeEvent serializes one stream event as a data: line. Payload shape
// depends on the event type.
func writeEvent(w io.Writer, ev domain.StreamEvent) {
	var payload any
	switch ev.Type {
	case domain.EventSources:
		payload = gin.H{"type": domain.EventSources, "sources": ev.Sources}
	case domain.EventToken:
		payload = gin.H{"type": domain.EventToken, "content": ev.Content, "is_final": ev.IsFinal}
	default:
		payload = gin.H{"error": ev.Error}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
