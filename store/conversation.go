package store

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/usememos/convo/plugin/exchange"
)

// Conversation is a thread of exchanges inside a project.
type Conversation struct {
	// ID is the storage row id. It changes every time the conversation is stored.
	ID        int64
	ThreadID  uuid.UUID
	ProjectID int64
	Title     string
	Exchanges []exchange.Exchange
	CreatedAt int64
}

// NewConversation starts an empty thread for a project. Nothing is persisted
// until the conversation is upserted.
func NewConversation(projectID int64) *Conversation {
	return &Conversation{
		ThreadID:  uuid.New(),
		ProjectID: projectID,
	}
}

// ConversationRow is a conversation as drivers read and write it, with the
// exchanges still serialized.
type ConversationRow struct {
	ID        int64
	ThreadID  string
	ProjectID int64
	Title     string
	Exchanges string
	CreatedAt int64
}

// ConversationPreview is the listing projection of a conversation.
type ConversationPreview struct {
	ID        int64
	CreatedAt int64
	Title     string
}

// UpsertConversation is the payload for UpsertConversation.
type UpsertConversation struct {
	Conversation *Conversation
	UserID       string
}

// ReplaceConversation carries a validated, serialized conversation to the driver.
type ReplaceConversation struct {
	UserID    string
	ThreadID  string
	ProjectID int64
	Title     string
	Exchanges string
	CreatedAt int64
}

// FindConversation identifies a single conversation.
type FindConversation struct {
	UserID    string
	ProjectID int64
	ID        int64
}

// FindConversationPreview filters for ListConversationPreviews.
type FindConversationPreview struct {
	UserID    string
	ProjectID int64
}

// DeleteConversation identifies the conversation to delete.
type DeleteConversation struct {
	UserID    string
	ProjectID int64
	ID        int64
}

// DeriveTitle returns the first line of the first exchange's query.
func DeriveTitle(exchanges []exchange.Exchange) (string, error) {
	if len(exchanges) == 0 {
		return "", errors.Wrap(ErrValidation, "conversation has no exchanges")
	}
	query, ok := exchanges[0].Query()
	if !ok {
		return "", errors.Wrap(ErrValidation, "first exchange has no query")
	}
	title, _, _ := strings.Cut(query, "\n")
	return strings.TrimSuffix(title, "\r"), nil
}

// ValidateText rejects exchanges carrying text that is not valid UTF-8, which
// the JSON encoding would otherwise rewrite to U+FFFD.
func ValidateText(exchanges []exchange.Exchange) error {
	for i, ex := range exchanges {
		fields := []string{ex.UserQuery, ex.Answer, ex.Conclusion}
		fields = append(fields, ex.Paths...)
		for _, step := range ex.SearchSteps {
			fields = append(fields, step.Kind, step.Query, step.Content)
		}
		if chunk := ex.FocusedChunk; chunk != nil {
			fields = append(fields, chunk.Path, chunk.Code)
		}
		for _, field := range fields {
			if !utf8.ValidString(field) {
				return errors.Wrapf(ErrValidation, "exchange %d contains invalid UTF-8", i)
			}
		}
	}
	return nil
}
