package model

import (
	"time"
)

const (
	CategoryProgress  = "Progress"
	CategoryIssue     = "Issue"
	CategoryBefore    = "Before"
	CategoryAfter     = "After"
	CategoryMilestone = "Milestone"

	DefaultUpdateTitle  = "Photo Update"
	DefaultUpdateAuthor = "Field Manager"
)

var Categories = []string{
	CategoryProgress,
	CategoryIssue,
	CategoryBefore,
	CategoryAfter,
	CategoryMilestone,
}

type Update struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	Timestamp   time.Time `json:"timestamp"`
	Photos      []Photo   `json:"photos"`
}

// UpdatePatch carries a partial update. Nil fields are left untouched.
type UpdatePatch struct {
	ProjectID   *int     `json:"projectId,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Author      *string  `json:"author,omitempty"`
	Photos      *[]Photo `json:"photos,omitempty"`
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (u *Update) PhotoCount() int {
	return len(u.Photos)
}
