// Package store persists the option catalog and finalized dessert boxes
// through gorm.
package store

import "errors"

// ErrNotFound reports that no row exists for the requested id.
var ErrNotFound = errors.New("store: record not found")

// Ordering used by list reads.
const (
	OrderByName = "name asc"
	OrderByID   = "id asc"
)
