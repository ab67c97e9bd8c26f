package model

// Report is a derived, chronological summary of a project's updates. It is never stored.
type Report struct {
	Project      ReportProject  `json:"project"`
	Updates      []ReportUpdate `json:"updates"`
	GeneratedAt  string         `json:"generatedAt"`
	TotalUpdates int            `json:"totalUpdates"`
	Summary      ReportSummary  `json:"summary"`
}

type ReportProject struct {
	ID           int    `json:"id"`
	Address      string `json:"address"`
	PropertyType string `json:"propertyType"`
	Status       string `json:"status"`
	StartDate    string `json:"startDate"`
	TargetDate   string `json:"targetDate"`
	CreatedAt    string `json:"createdAt"`
}

type ReportUpdate struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Timestamp   string        `json:"timestamp"`
	Author      string        `json:"author"`
	PhotoCount  int           `json:"photoCount"`
	Photos      []ReportPhoto `json:"photos"`
}

type ReportPhoto struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
	TakenAt string `json:"takenAt"`
}

type ReportSummary struct {
	ProgressUpdates int `json:"progressUpdates"`
	Milestones      int `json:"milestones"`
	Issues          int `json:"issues"`
	TotalPhotos     int `json:"totalPhotos"`
}
