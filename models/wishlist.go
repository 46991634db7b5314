package models

import (
	"time"
)

// WishlistEntry marks a book a user wants to read later. Each
// (user, book) pair may appear at most once.
type WishlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_book" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_book" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the WishlistEntry model
func (WishlistEntry) TableName() string {
	return "wishlist_entries"
}
