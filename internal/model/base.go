package model

import "github.com/google/uuid"

// assignID gives a new row its primary key before insert so the same models
// work on PostgreSQL and on the SQLite store used by tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
