package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnedByUser(t *testing.T) {
	assert.Equal(t,
		"EXISTS (SELECT 1 FROM projects p WHERE p.id = c.project_id AND p.user_id = ?)",
		OwnedByUser("c.project_id", "?"),
	)
	assert.Equal(t,
		"EXISTS (SELECT 1 FROM projects p WHERE p.id = $2 AND p.user_id = $3)",
		OwnedByUser("$2", "$3"),
	)
}
