package domain

import "time"

// NoteType distinguishes user-written notes from system activity records.
type NoteType string

const (
	NoteTypeNote     NoteType = "note"
	NoteTypeActivity NoteType = "activity"
)

// Note is an append-only entry in a todo's history.
type Note struct {
	ID        int64     `json:"id"`
	TodoID    int64     `json:"todo_id"`
	Type      NoteType  `json:"note_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
