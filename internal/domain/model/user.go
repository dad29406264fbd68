package model

import "time"

// User is an account that can log in and obtain a token.
// PasswordHash never leaves the process in JSON form.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Email        string     `json:"email" gorm:"size:254"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin    *time.Time `json:"last_login"`
}

// TableName pins the table name independent of GORM's pluralizer.
func (User) TableName() string { return "users" }
