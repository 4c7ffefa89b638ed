package model

import "time"

// DefaultAvatar is used when a user has not uploaded a picture.
const DefaultAvatar = "default.jpg"

// User represents a registered blog author.
// Username and email compare case-sensitively, so both columns use a binary collation.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(20) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;uniqueIndex:idx_users_username;not null"`
	Email        string    `json:"email" gorm:"type:varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `json:"-" gorm:"size:60;not null"` // Never expose in JSON
	AvatarPath   string    `json:"avatar_path" gorm:"size:100;not null;default:'default.jpg'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
