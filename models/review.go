package models

import (
	"time"
)

// Review is a reader's rating of a book they received. One review per
// (user, book) pair; repeat submissions overwrite rating and comment.
// OrderID links the delivered order that authorized the review.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_book" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_book" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	OrderID   uint      `gorm:"not null" json:"order_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
