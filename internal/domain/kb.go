package domain

import "time"

// KBTopic names a job topic and the sections to generate for it.
type KBTopic struct {
	Name       string   `json:"name" binding:"required"`
	Sections   []string `json:"sections" binding:"required"`
	NumEntries int      `json:"num_entries"`
}

// KBGenerateRequest asks for knowledge-base entries across multiple topics.
type KBGenerateRequest struct {
	Topics []KBTopic `json:"topics" binding:"required"`
}

// KBSection is one generated section of a knowledge-base entry.
type KBSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// KBEntry is a generated knowledge-base document for a single topic.
type KBEntry struct {
	ID        string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	Sections  []KBSection `json:"sections"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}
