package repository

import (
	"time"

	"github.com/google/uuid"

	"pathfinder/internal/domain"
)

// KBRepository persists generated knowledge-base entries
type KBRepository struct {
	db *DB
}

// NewKBRepository creates a new knowledge-base repository
func NewKBRepository(db *DB) *KBRepository {
	return &KBRepository{db: db}
}

// SaveEntry stores every section of a generated entry
func (r *KBRepository) SaveEntry(entry *domain.KBEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	for _, section := range entry.Sections {
		_, err := r.db.Exec(`
			INSERT INTO kb_entries (id, topic, section, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), entry.Title, section.Title, section.Content, entry.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListByTopic retrieves stored sections for a topic
func (r *KBRepository) ListByTopic(topic string) ([]domain.KBSection, error) {
	rows, err := r.db.Query(`
		SELECT section, content FROM kb_entries
		WHERE topic = ? ORDER BY created_at
	`, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []domain.KBSection
	for rows.Next() {
		var s domain.KBSection
		if err := rows.Scan(&s.Title, &s.Content); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// Topics lists distinct topics with stored entries
func (r *KBRepository) Topics() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT topic FROM kb_entries ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
