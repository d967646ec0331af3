package models

import (
	"strings"
	"time"
)

// Problem represents a practice exercise students can solve in C or C++.
type Problem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Difficulty  string    `gorm:"size:32;not null" json:"difficulty"`
	Category    string    `gorm:"size:64" json:"category"`
	Tags        string    `gorm:"type:text" json:"tags"`
	TestCases   string    `gorm:"type:text" json:"test_cases"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagsSlice returns the tags as a slice of strings.
func (p Problem) TagsSlice() []string {
	if p.Tags == "" {
		return nil
	}

	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
