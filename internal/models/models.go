package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	Name         string    `gorm:"not null"                 json:"name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	JoinedIn     time.Time `gorm:"autoCreateTime"           json:"joined_in"`

	Posts []Post `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"posts,omitempty"`
	Votes []Vote `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"  json:"-"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Content   string    `gorm:"not null"                 json:"content"`
	Published bool      `gorm:"not null;default:true"    json:"published"`
	OwnerID   uint      `gorm:"index;not null"           json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	Owner *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Votes []Vote `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// VoteCount is computed at query time, not persisted.
	VoteCount int64 `gorm:"-" json:"votes"`
}

// Vote is the like relationship between a user and a post. The composite
// primary key guarantees a single row per (post, user) pair; a race to
// insert a duplicate fails at the constraint, not in application code.
type Vote struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
