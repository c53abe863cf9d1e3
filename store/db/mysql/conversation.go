package mysql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/usememos/convo/store"
)

func (d *DB) ReplaceConversation(ctx context.Context, replace *store.ReplaceConversation) (*store.ConversationRow, error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt := "DELETE FROM `conversations` WHERE `thread_id` = ? AND " + store.OwnedByUser("`conversations`.`project_id`", "?")
	if _, err := tx.ExecContext(ctx, stmt, replace.ThreadID, replace.UserID); err != nil {
		return nil, err
	}

	stmt = "INSERT INTO `conversations` (`thread_id`, `title`, `exchanges`, `project_id`, `created_at`) " +
		"SELECT ?, ?, ?, ?, ? FROM DUAL WHERE " + store.OwnedByUser("?", "?")
	result, err := tx.ExecContext(ctx, stmt,
		replace.ThreadID, replace.Title, replace.Exchanges, replace.ProjectID, replace.CreatedAt,
		replace.ProjectID, replace.UserID,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &store.ConversationRow{
		ID:        id,
		ThreadID:  replace.ThreadID,
		ProjectID: replace.ProjectID,
		Title:     replace.Title,
		Exchanges: replace.Exchanges,
		CreatedAt: replace.CreatedAt,
	}, nil
}

func (d *DB) GetConversation(ctx context.Context, find *store.FindConversation) (*store.ConversationRow, error) {
	query := "SELECT c.`id`, c.`thread_id`, c.`project_id`, c.`title`, c.`exchanges`, c.`created_at` " +
		"FROM `conversations` c WHERE c.`id` = ? AND c.`project_id` = ? AND " + store.OwnedByUser("c.`project_id`", "?")
	row := &store.ConversationRow{}
	if err := d.db.QueryRowContext(ctx, query, find.ID, find.ProjectID, find.UserID).
		Scan(&row.ID, &row.ThreadID, &row.ProjectID, &row.Title, &row.Exchanges, &row.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

func (d *DB) ListConversationPreviews(ctx context.Context, find *store.FindConversationPreview) ([]*store.ConversationPreview, error) {
	query := "SELECT c.`id`, c.`created_at`, c.`title` FROM `conversations` c " +
		"WHERE c.`project_id` = ? AND " + store.OwnedByUser("c.`project_id`", "?") +
		" ORDER BY c.`created_at` DESC, c.`id` DESC"
	rows, err := d.db.QueryContext(ctx, query, find.ProjectID, find.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.ConversationPreview{}
	for rows.Next() {
		preview := &store.ConversationPreview{}
		if err := rows.Scan(&preview.ID, &preview.CreatedAt, &preview.Title); err != nil {
			return nil, err
		}
		list = append(list, preview)
	}
	return list, rows.Err()
}

func (d *DB) DeleteConversation(ctx context.Context, delete *store.DeleteConversation) error {
	stmt := "DELETE FROM `conversations` WHERE `id` = ? AND `project_id` = ? AND " + store.OwnedByUser("`conversations`.`project_id`", "?")
	result, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.ProjectID, delete.UserID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
