package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationRecord is the audit-trail row for one scoring call. The system of
// record for submissions lives in the application layer; these rows exist for
// cost reporting and moderation review.
type EvaluationRecord struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	SubmissionID       string                      `gorm:"size:64;index" json:"submission_id"`
	RequestedModel     string                      `gorm:"size:64" json:"requested_model"`
	ModelUsed          string                      `gorm:"size:64" json:"model_used"`
	Provider           string                      `gorm:"size:32" json:"provider"`
	TechnicalScore     int                         `json:"technical_score"`
	ClarityScore       int                         `json:"clarity_score"`
	CommunicationScore int                         `json:"communication_score"`
	OverallScore       int                         `json:"overall_score"`
	Feedback           string                      `gorm:"type:text" json:"feedback"`
	Strengths          datatypes.JSONSlice[string] `json:"strengths"`
	Improvements       datatypes.JSONSlice[string] `json:"improvements"`
	CostIncurred       float64                     `json:"cost_incurred"`
	FellBack           bool                        `json:"fell_back"`
	CreatedAt          time.Time                   `json:"created_at"`
}

// ValidationRecord is the audit-trail row for one validation verdict.
type ValidationRecord struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	SubmissionID    string                      `gorm:"size:64;index" json:"submission_id"`
	IsValid         bool                        `json:"is_valid"`
	Issues          datatypes.JSONSlice[string] `json:"issues"`
	Warnings        datatypes.JSONSlice[string] `json:"warnings"`
	PlagiarismScore int                         `json:"plagiarism_score"`
	Confidence      int                         `json:"confidence"`
	CreatedAt       time.Time                   `json:"created_at"`
}
