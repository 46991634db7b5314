package models

import (
	"time"
)

// BookStatus is the publish state of a book. Only published books are
// orderable and visible in the public listing.
type BookStatus string

const (
	BookStatusPublished   BookStatus = "published"
	BookStatusUnpublished BookStatus = "unpublished"
)

// Valid reports whether the status is one of the known publish states.
func (s BookStatus) Valid() bool {
	return s == BookStatusPublished || s == BookStatusUnpublished
}

// Book represents a book in the catalog, managed by a librarian
type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null;index" json:"title"`
	Author      string     `gorm:"not null" json:"author"`
	Price       float64    `gorm:"not null;check:price > 0" json:"price"`
	Category    string     `json:"category"`
	Description string     `gorm:"type:text" json:"description"`
	Status      BookStatus `gorm:"not null;default:'unpublished'" json:"status"`
	CoverS3Key  *string    `json:"cover_s3_key,omitempty"`             // nullable, S3 key for uploaded cover image
	CoverURL    *string    `gorm:"-" json:"cover_url,omitempty"`       // computed field, presigned URL for cover
	LibrarianID uint       `gorm:"not null;index" json:"librarian_id"` // foreign key to users table
	Librarian   User       `gorm:"foreignKey:LibrarianID" json:"librarian"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Book model
func (Book) TableName() string {
	return "books"
}
