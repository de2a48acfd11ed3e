package models

import "time"

// Submission represents a file handed in by a student for an assignment.
// The schema deliberately carries no uniqueness over (assignment_id,
// student_id): a student may submit more than once.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	FilePath     string    `gorm:"size:255" json:"file_path"`
	SubmittedAt  time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	Grade        *int      `json:"grade"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsGraded reports whether the submission has received a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}
