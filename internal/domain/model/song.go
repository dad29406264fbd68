// Package model contains domain models passed between layers.
package model

import "fmt"

// Song is a single catalog record.
// ID is assigned by the store on create and never reused after a delete.
type Song struct {
	ID     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Title  string `json:"title" gorm:"size:255;not null"`
	Artist string `json:"artist" gorm:"size:255;not null"`
}

// TableName pins the table name independent of GORM's pluralizer.
func (Song) TableName() string { return "songs" }

// String renders the song as "title - artist".
func (s Song) String() string {
	return fmt.Sprintf("%s - %s", s.Title, s.Artist)
}
