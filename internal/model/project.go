package model

import (
	"time"
)

// Project lifecycle stages, in order.
const (
	ProjectStatusPlanning = "Planning & Permits"
	ProjectStatusDemo     = "Demo & Structural"
	ProjectStatusSystems  = "Systems & Rough-In"
	ProjectStatusFinishes = "Finishes & Final"
	ProjectStatusOnMarket = "On-Market"
	ProjectStatusSold     = "Sold"
	ProjectStatusUnknown  = "Unknown"
	DefaultProjectAddress = "Address not specified"
	DefaultProjectDate    = "TBD"
)

var ProjectStatuses = []string{
	ProjectStatusPlanning,
	ProjectStatusDemo,
	ProjectStatusSystems,
	ProjectStatusFinishes,
	ProjectStatusOnMarket,
	ProjectStatusSold,
}

type Project struct {
	ID                 int       `json:"id"`
	Address            string    `json:"address"`
	PropertyType       string    `json:"propertyType"`
	Status             string    `json:"status"`
	StartDate          time.Time `json:"startDate"`
	TargetDate         time.Time `json:"targetDate"`
	AccessInstructions string    `json:"accessInstructions,omitempty"`
	Budget             *float64  `json:"budget,omitempty"`
	Spent              *float64  `json:"spent,omitempty"`
	Progress           *float64  `json:"progress,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ProjectPatch carries a partial project update. Nil fields are left untouched.
type ProjectPatch struct {
	Address            *string    `json:"address,omitempty"`
	PropertyType       *string    `json:"propertyType,omitempty"`
	Status             *string    `json:"status,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	TargetDate         *time.Time `json:"targetDate,omitempty"`
	AccessInstructions *string    `json:"accessInstructions,omitempty"`
	Budget             *float64   `json:"budget,omitempty"`
	Spent              *float64   `json:"spent,omitempty"`
	Progress           *float64   `json:"progress,omitempty"`
}

// StatusIndex returns the position of status in the lifecycle, or -1.
func StatusIndex(status string) int {
	for i, s := range ProjectStatuses {
		if s == status {
			return i
		}
	}
	return -1
}

func IsValidStatus(status string) bool {
	return StatusIndex(status) >= 0
}

// ClampProgress bounds a progress percentage to [0, 100]. A missing value reads as 0.
func ClampProgress(p *float64) float64 {
	if p == nil {
		return 0
	}
	switch {
	case *p < 0:
		return 0
	case *p > 100:
		return 100
	}
	return *p
}
