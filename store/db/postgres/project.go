package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/usememos/convo/store"
)

func (d *DB) CreateProject(ctx context.Context, create *store.Project) (*store.Project, error) {
	stmt := `INSERT INTO projects (user_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, create.UserID, create.Name, create.CreatedAt).Scan(&create.ID); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListProjects(ctx context.Context, find *store.FindProject) ([]*store.Project, error) {
	where, args := []string{"user_id = " + placeholder(1)}, []any{find.UserID}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, user_id, name, created_at FROM projects WHERE %s ORDER BY created_at DESC, id DESC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Project
	for rows.Next() {
		p := &store.Project{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
