package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/usememos/convo/plugin/exchange"
)

// UpsertConversation stores the conversation as the current state of its thread,
// replacing any earlier row of the same thread owned by the user.
// Validation happens before any statement reaches the database.
func (s *Store) UpsertConversation(ctx context.Context, upsert *UpsertConversation) (*Conversation, error) {
	conv := upsert.Conversation
	if conv == nil {
		return nil, errors.Wrap(ErrValidation, "missing conversation")
	}
	if conv.ThreadID == uuid.Nil {
		return nil, errors.Wrap(ErrValidation, "missing thread id")
	}
	title, err := DeriveTitle(conv.Exchanges)
	if err != nil {
		return nil, err
	}
	if err := ValidateText(conv.Exchanges); err != nil {
		return nil, err
	}
	blob, err := json.Marshal(conv.Exchanges)
	if err != nil {
		return nil, errors.Wrapf(ErrValidation, "failed to encode exchanges: %v", err)
	}

	row, err := s.driver.ReplaceConversation(ctx, &ReplaceConversation{
		UserID:    upsert.UserID,
		ThreadID:  conv.ThreadID.String(),
		ProjectID: conv.ProjectID,
		Title:     title,
		Exchanges: string(blob),
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return nil, classify(err, "failed to replace conversation")
	}
	return &Conversation{
		ID:        row.ID,
		ThreadID:  conv.ThreadID,
		ProjectID: row.ProjectID,
		Title:     row.Title,
		Exchanges: conv.Exchanges,
		CreatedAt: row.CreatedAt,
	}, nil
}

// GetConversation loads a full conversation owned by the user.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	row, err := s.driver.GetConversation(ctx, find)
	if err != nil {
		return nil, classify(err, "failed to get conversation")
	}
	return decodeConversation(row)
}

// ListConversationPreviews lists the user's conversations of a project, most recent first.
func (s *Store) ListConversationPreviews(ctx context.Context, find *FindConversationPreview) ([]*ConversationPreview, error) {
	list, err := s.driver.ListConversationPreviews(ctx, find)
	if err != nil {
		return nil, classify(err, "failed to list conversations")
	}
	if list == nil {
		list = []*ConversationPreview{}
	}
	return list, nil
}

// DeleteConversation removes a conversation owned by the user.
func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	return classify(s.driver.DeleteConversation(ctx, delete), "failed to delete conversation")
}

func decodeConversation(row *ConversationRow) (*Conversation, error) {
	threadID, err := uuid.Parse(row.ThreadID)
	if err != nil {
		return nil, errors.Wrapf(ErrInternal, "conversation %d has invalid thread id: %v", row.ID, err)
	}
	var exchanges []exchange.Exchange
	if err := json.Unmarshal([]byte(row.Exchanges), &exchanges); err != nil {
		return nil, errors.Wrapf(ErrInternal, "conversation %d has invalid exchanges: %v", row.ID, err)
	}
	if len(exchanges) == 0 {
		return nil, errors.Wrapf(ErrInternal, "conversation %d has no exchanges", row.ID)
	}
	return &Conversation{
		ID:        row.ID,
		ThreadID:  threadID,
		ProjectID: row.ProjectID,
		Title:     row.Title,
		Exchanges: exchanges,
		CreatedAt: row.CreatedAt,
	}, nil
}
