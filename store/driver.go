package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
//
// Every conversation method must constrain its rows with OwnedByUser.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Project model related methods.
	CreateProject(ctx context.Context, create *Project) (*Project, error)
	ListProjects(ctx context.Context, find *FindProject) ([]*Project, error)

	// Conversation model related methods.
	ReplaceConversation(ctx context.Context, replace *ReplaceConversation) (*ConversationRow, error)
	GetConversation(ctx context.Context, find *FindConversation) (*ConversationRow, error)
	ListConversationPreviews(ctx context.Context, find *FindConversationPreview) ([]*ConversationPreview, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error
}
