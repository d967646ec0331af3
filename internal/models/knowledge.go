package models

import (
	"strings"
	"time"
)

// KnowledgeArticle is an entry in the knowledge base.
type KnowledgeArticle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Category  string    `gorm:"size:64;not null" json:"category"`
	Tags      string    `gorm:"type:text" json:"tags"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagsSlice returns the tags as a slice of strings.
func (a KnowledgeArticle) TagsSlice() []string {
	if a.Tags == "" {
		return nil
	}

	parts := strings.Split(a.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
