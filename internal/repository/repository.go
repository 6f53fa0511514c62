package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by key matches no row
var ErrNotFound = errors.New("record not found")

// Repository wraps every query the studio issues against the store
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for health checks
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Dialect returns the name of the active SQL dialect
func (r *Repository) Dialect() string {
	return r.db.Dialector.Name()
}
