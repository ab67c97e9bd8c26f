package model

import (
	"time"
)

// Photo is a persisted photo attached to an update.
type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	StoragePath  string    `json:"-"`
	Caption      string    `json:"caption"`
	TakenAt      time.Time `json:"takenAt"`
}
