package models

import "time"

// Record carries the identity and lifecycle columns shared by every table.
// A non-nil DeletedAt marks the row as soft-deleted; gorm does not filter on it,
// callers decide whether deleted rows are visible.
type Record struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at"`
}

// Lifecycle exposes the record so policy code can work on any resource.
func (r *Record) Lifecycle() *Record { return r }

// Active reports whether the row has not been soft-deleted.
func (r *Record) Active() bool { return r.DeletedAt == nil }

// Resource is implemented by every soft-deletable entity.
type Resource interface {
	Lifecycle() *Record
	ResourceName() string
}
