package queue

import "database/sql"

// DB exposes the handle so tests can corrupt or instrument the schema.
func (s *Store) DB() *sql.DB { return s.db }
