package entity

import (
	"time"

	"github.com/joseph-ayodele/certificate-verifier/constants"
)

// Submission represents a certificate submission for data transfer between layers.
type Submission struct {
	ID                  int64                      `json:"id"`
	FullName            string                     `json:"full_name"`
	Phone               string                     `json:"phone"`
	CivilID             string                     `json:"civil_id"`
	CertificatePath     string                     `json:"certificate_path"`
	OCRText             *string                    `json:"ocr_text"`
	ExtractedStudentID  *string                    `json:"extracted_student_id"`
	ExtractedUniversity *string                    `json:"extracted_university"`
	Status              constants.SubmissionStatus `json:"status"`
	Notes               *string                    `json:"notes"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

// SubmissionSummary is the dashboard list projection of a Submission.
type SubmissionSummary struct {
	ID                  int64                      `json:"id"`
	FullName            string                     `json:"full_name"`
	Phone               string                     `json:"phone"`
	CivilID             string                     `json:"civil_id"`
	ExtractedStudentID  *string                    `json:"extracted_student_id"`
	ExtractedUniversity *string                    `json:"extracted_university"`
	Status              constants.SubmissionStatus `json:"status"`
	CreatedAt           time.Time                  `json:"created_at"`
}

// SubmissionStatusView is what a submitter sees when checking by phone.
type SubmissionStatusView struct {
	ID        int64                      `json:"id"`
	FullName  string                     `json:"full_name"`
	CivilID   string                     `json:"civil_id"`
	Status    constants.SubmissionStatus `json:"status"`
	Notes     *string                    `json:"notes"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

func (s *Submission) Summary() SubmissionSummary {
	return SubmissionSummary{
		ID:                  s.ID,
		FullName:            s.FullName,
		Phone:               s.Phone,
		CivilID:             s.CivilID,
		ExtractedStudentID:  s.ExtractedStudentID,
		ExtractedUniversity: s.ExtractedUniversity,
		Status:              s.Status,
		CreatedAt:           s.CreatedAt,
	}
}

func (s *Submission) StatusView() SubmissionStatusView {
	return SubmissionStatusView{
		ID:        s.ID,
		FullName:  s.FullName,
		CivilID:   s.CivilID,
		Status:    s.Status,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
