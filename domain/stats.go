package domain

import "time"

// TodoStats summarises every todo regardless of the dashboard tab.
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// CategoryStat counts active todos in one category.
type CategoryStat struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// PriorityStat counts active todos at one priority level.
type PriorityStat struct {
	Priority Priority `json:"priority"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

// StatsReport is the payload of the statistics endpoint.
type StatsReport struct {
	Categories []CategoryStat `json:"categories"`
	Priorities []PriorityStat `json:"priorities"`
}

// Dashboard tabs.
const (
	TabActive    = "active"
	TabCompleted = "completed"
)

// Dashboard is everything the main page renders.
type Dashboard struct {
	Tab        string
	Todos      []TodoView
	Categories []Category
	Stats      TodoStats
	Today      time.Time
}
