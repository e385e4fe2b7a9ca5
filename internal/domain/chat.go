package domain

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of conversation history, most-recent-last.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChunkMetadata carries provenance for a retrieved chunk.
type ChunkMetadata struct {
	JobTitle    string `json:"job_title,omitempty"`
	SourceIndex int    `json:"source_index"`
}

// DocumentChunk is a bounded slice of a corpus document used as a unit of
// retrieval. Immutable once retrieved.
type DocumentChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"history"`
	Model   string        `json:"model"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	Reply   string          `json:"reply"`
	Sources []DocumentChunk `json:"sources"`
}

// QuizRequest carries career-quiz answers for a recommendation.
type QuizRequest struct {
	Answers []string      `json:"answers" binding:"required"`
	Model   string        `json:"model"`
	History []ChatMessage `json:"history"`
}

// CVAnalysisRequest carries raw CV text for keyword-based analysis.
type CVAnalysisRequest struct {
	CVText string `json:"cv_text" binding:"required"`
	Model  string `json:"model"`
}

// Stream event types.
const (
	EventSources = "sources"
	EventToken   = "token"
	EventError   = "error"
)

// StreamEvent is one unit of a streaming response. A stream emits at most one
// sources event, then token events whose Content grows monotonically (each a
// prefix of the next) until exactly one carries IsFinal, optionally followed
// by a terminal error event.
type StreamEvent struct {
	Type    string          `json:"type"`
	Sources []DocumentChunk `json:"sources,omitempty"`
	Content string          `json:"content,omitempty"`
	IsFinal bool            `json:"is_final,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Transcription is the result of speech-to-text over uploaded audio.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
