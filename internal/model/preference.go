package model

import (
	"time"
)

const (
	PreferenceLastSelectedProject = "last_selected_project"
)

type Preference struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
