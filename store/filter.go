package store

import "fmt"

// OwnedByUser returns the predicate that ties a conversation's project to the
// acting user. projectColumn is the SQL expression holding the project id and
// userArg the placeholder bound to the user id. Every conversation statement
// of every driver is filtered through it.
func OwnedByUser(projectColumn, userArg string) string {
	return fmt.Sprintf("EXISTS (SELECT 1 FROM projects p WHERE p.id = %s AND p.user_id = %s)", projectColumn, userArg)
}
