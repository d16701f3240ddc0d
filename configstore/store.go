package configstore

import (
	_ "github.com/lib/pq"
)

// Store reads chain and token configuration from a Postgres database.
// Deployments that manage their supported chain set centrally use it as
// an additional static source for the config resolver.
type Store struct {
	dbConnStr string
}

// NewStore creates a new Store instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *Store: a pointer to the newly created Store instance.
// - error: an error if the creation of the Store instance fails.
func NewStore(connStr string) (*Store, error) {
	return &Store{
		dbConnStr: connStr,
	}, nil
}
