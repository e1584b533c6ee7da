package domain

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#667eea"

// Category groups todos. Deleting one detaches its todos rather than removing them.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
