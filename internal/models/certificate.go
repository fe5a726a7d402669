package models

import "time"

// Certificate records an issued completion certificate for one
// (student, course) pair. The rendered artifact lives in an external
// system; this row is the issuance ledger keyed by the certificate code.
type Certificate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_certificate_student_course" json:"student_id"`
	CourseID        uint      `gorm:"not null;uniqueIndex:idx_certificate_student_course" json:"course_id"`
	CertificateCode string    `gorm:"size:64;uniqueIndex;not null" json:"certificate_code"`
	IssuedAt        time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt       time.Time `json:"created_at"`
	Student         Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course          Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}
