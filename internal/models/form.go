package models

import (
	"time"

	"gorm.io/datatypes"
)

// FormSubmission holds one user's answers to one form type. It is created on
// the first saved step and updated in place afterwards.
type FormSubmission struct {
	ID                 uint              `json:"id" gorm:"primaryKey"`
	UserID             uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_user_form"`
	FormType           string            `json:"form_type" gorm:"type:varchar(50);not null;uniqueIndex:idx_submission_user_form"`
	SchemaVersion      int               `json:"schema_version" gorm:"not null;default:1"`
	CurrentStep        int               `json:"current_step" gorm:"not null;default:0"`
	ProgressPercentage float64           `json:"progress_percentage" gorm:"type:decimal(5,2);not null;default:0"`
	IsCompleted        bool              `json:"is_completed" gorm:"not null;default:false"`
	FormData           datatypes.JSONMap `json:"form_data" gorm:"type:json"`
	CompletedAt        *time.Time        `json:"completed_at"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// FormProgress is the summary returned after every save.
type FormProgress struct {
	FormType           string  `json:"form_type"`
	CurrentStep        int     `json:"current_step"`
	TotalSteps         int     `json:"total_steps"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsCompleted        bool    `json:"is_completed"`
}

type SaveStepRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required"`
}

type SubmissionFilter struct {
	FormType string
	Page     int
	PageSize int
}
