package models

import "github.com/google/uuid"

// assignID fills a zero primary key before insert so rows get the same ids on
// postgres and on the sqlite test store.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
