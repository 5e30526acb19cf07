// Package kyc models identity document submissions and the reviewer decision
// that drives a user's KYC status.
package kyc

import (
	"fmt"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrDocumentNotFound is returned when a KYC document does not exist.
	ErrDocumentNotFound = fmt.Errorf("%w: KYC document not found", domain.ErrNotFound)
	// ErrAlreadySubmitted is returned when the user's latest submission is
	// still open or approved.
	ErrAlreadySubmitted = fmt.Errorf("%w: KYC already submitted", domain.ErrConflict)
	// ErrInvalidDecision is returned for review statuses other than approved or rejected.
	ErrInvalidDecision = fmt.Errorf("%w: invalid status", domain.ErrInvalidArgument)
	// ErrAlreadyReviewed is returned when a decided document receives the opposite decision.
	ErrAlreadyReviewed = fmt.Errorf("%w: KYC document already reviewed", domain.ErrFailedPrecondition)
	// ErrInvalidDocumentType is returned for unsupported document types.
	ErrInvalidDocumentType = fmt.Errorf("%w: invalid document type", domain.ErrInvalidArgument)
)

// Status is the lifecycle state of a single document.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"

	// StatusNotSubmitted is reported for users without any document.
	StatusNotSubmitted Status = "not_submitted"
)

// DocumentType enumerates accepted identity documents.
type DocumentType string

const (
	DocumentCPF      DocumentType = "cpf"
	DocumentRG       DocumentType = "rg"
	DocumentCNH      DocumentType = "cnh"
	DocumentPassport DocumentType = "passport"
)

// Valid reports whether t is an accepted document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentCPF, DocumentRG, DocumentCNH, DocumentPassport:
		return true
	}
	return false
}

// Document is a KYC submission.
type Document struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"user_id"`
	DocumentType   DocumentType `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	DocumentImage  string       `json:"-"`
	SelfieImage    string       `json:"-"`
	Status         Status       `json:"status"`
	SubmittedAt    time.Time    `json:"submitted_at"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
	ReviewerID     *uuid.UUID   `json:"reviewer_id,omitempty"`
	ReviewerNotes  *string      `json:"reviewer_notes,omitempty"`
}

// Submit creates a document awaiting analysis. latest is the user's most
// recent document, or nil. A new submission is only accepted once the prior
// one was rejected.
func Submit(
	userID uuid.UUID,
	latest *Document,
	docType DocumentType,
	number, image, selfie string,
	now time.Time,
) (*Document, error) {
	if latest != nil && latest.Status != StatusRejected {
		return nil, ErrAlreadySubmitted
	}
	if !docType.Valid() {
		return nil, ErrInvalidDocumentType
	}
	return &Document{
		ID:             uuid.New(),
		UserID:         userID,
		DocumentType:   docType,
		DocumentNumber: number,
		DocumentImage:  image,
		SelfieImage:    selfie,
		Status:         StatusAnalyzing,
		SubmittedAt:    now,
	}, nil
}

// Open reports whether the document still awaits a decision.
func (d *Document) Open() bool {
	switch d.Status {
	case StatusPending, StatusAnalyzing, StatusInReview:
		return true
	}
	return false
}

// Review applies a reviewer decision. It returns changed=false when the same
// decision was already recorded.
func (d *Document) Review(
	decision Status,
	reviewerID uuid.UUID,
	notes string,
	now time.Time,
) (changed bool, err error) {
	if decision != StatusApproved && decision != StatusRejected {
		return false, ErrInvalidDecision
	}
	if !d.Open() {
		if d.Status == decision {
			return false, nil
		}
		return false, ErrAlreadyReviewed
	}
	d.Status = decision
	d.ReviewedAt = &now
	d.ReviewerID = &reviewerID
	d.ReviewerNotes = &notes
	return true, nil
}

// UserStatus maps a decision to the status mirrored on the user.
func (s Status) UserStatus() user.KYCStatus {
	switch s {
	case StatusApproved:
		return user.KYCApproved
	case StatusRejected:
		return user.KYCRejected
	case StatusNotSubmitted:
		return user.KYCPending
	default:
		return user.KYCInReview
	}
}

// PendingSummary is the reviewer-facing view of an open submission.
type PendingSummary struct {
	KYCID        uuid.UUID    `json:"kyc_id"`
	UserName     string       `json:"user_name"`
	UserEmail    string       `json:"user_email"`
	DocumentType DocumentType `json:"document_type"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	Status       Status       `json:"status"`
}
