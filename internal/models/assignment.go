package models

import "time"

// Assignment represents a piece of coursework published by a teacher.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"size:50;not null" json:"subject"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	Attachment  string    `gorm:"size:255" json:"attachment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
