package model

import "time"

// Post is a blog entry owned by exactly one user.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_posts_created"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   uint      `json:"owner_id" gorm:"not null;index"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Page is one slice of a post listing, newest first.
type Page struct {
	Items      []Post `json:"items"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
}
