package repository

import "context"

// Store bundles the repositories backed by one database.
type Store struct {
	Todos      TodoRepository
	Categories CategoryRepository
	Subtasks   SubtaskRepository
	Notes      NoteRepository
	Settings   SettingsRepository

	Ping  func(ctx context.Context) error
	Close func() error
}
