// Package kyc runs the identity verification workflow: users submit
// documents, reviewers decide, and the decision is mirrored on the user.
package kyc

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
)

const pendingLimit = 100

// StatusView is what a user sees about their verification.
type StatusView struct {
	Status        kyc.Status `json:"status"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ReviewerNotes *string    `json:"reviewer_notes,omitempty"`
}

// SubmitInput carries a document submission.
type SubmitInput struct {
	DocumentType   kyc.DocumentType
	DocumentNumber string
	DocumentImage  string
	SelfieImage    string
}

type Service struct {
	bus    eventbus.Bus
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

func New(
	bus eventbus.Bus,
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{
		bus:    bus,
		uow:    uow,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a document and moves the user to in_review.
func (s *Service) Submit(
	ctx context.Context,
	userID uuid.UUID,
	in SubmitInput,
) (doc *kyc.Document, err error) {
	log := s.logger.With("context", "Submit", "userID", userID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		docs, err := uow.KYCRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		// Serializes submissions per user so only one passes the latest check.
		if _, err := users.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		latest, err := docs.Latest(ctx, userID)
		if err != nil {
			return err
		}
		doc, err = kyc.Submit(
			userID,
			latest,
			in.DocumentType,
			in.DocumentNumber,
			in.DocumentImage,
			in.SelfieImage,
			s.now(),
		)
		if err != nil {
			return err
		}
		if err := docs.Create(ctx, doc); err != nil {
			return err
		}
		return users.SetKYCStatus(ctx, userID, user.KYCInReview)
	})
	if err != nil {
		log.Warn("KYC submission rejected", "error", err)
		return nil, err
	}
	log.Info("KYC submitted", "kycID", doc.ID, "documentType", doc.DocumentType)
	return doc, nil
}

// Status reports the user's latest submission, or not_submitted.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*StatusView, error) {
	docs, err := s.uow.KYCRepository()
	if err != nil {
		return nil, err
	}
	latest, err := docs.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &StatusView{Status: kyc.StatusNotSubmitted}, nil
	}
	submittedAt := latest.SubmittedAt
	return &StatusView{
		Status:        latest.Status,
		SubmittedAt:   &submittedAt,
		ReviewerNotes: latest.ReviewerNotes,
	}, nil
}

// ListPending returns submissions still awaiting a decision, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]kyc.PendingSummary, error) {
	docs, err := s.uow.KYCRepository()
	if err != nil {
		return nil, err
	}
	return docs.ListPending(ctx, pendingLimit)
}

// Review applies a reviewer decision and mirrors it on the user. Repeating
// the recorded decision is a no-op.
func (s *Service) Review(
	ctx context.Context,
	kycID, reviewerID uuid.UUID,
	decision kyc.Status,
	notes string,
) (doc *kyc.Document, err error) {
	log := s.logger.With("context", "Review", "kycID", kycID, "reviewerID", reviewerID)
	if decision != kyc.StatusApproved && decision != kyc.StatusRejected {
		return nil, kyc.ErrInvalidDecision
	}

	var changed bool
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		docs, err := uow.KYCRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		doc, err = docs.GetForUpdate(ctx, kycID)
		if err != nil {
			return err
		}
		changed, err = doc.Review(decision, reviewerID, notes, s.now())
		if err != nil || !changed {
			return err
		}
		if err := docs.Update(ctx, doc); err != nil {
			return err
		}
		return users.SetKYCStatus(ctx, doc.UserID, decision.UserStatus())
	})
	if err != nil {
		log.Warn("KYC review rejected", "error", err)
		return nil, err
	}
	if !changed {
		log.Info("KYC review repeated, nothing to do", "status", doc.Status)
		return doc, nil
	}

	log.Info("KYC reviewed", "status", doc.Status, "userID", doc.UserID)
	if s.bus != nil {
		if err := s.bus.Emit(ctx, &events.KYCReviewed{
			Meta:       events.NewMeta(),
			KYCID:      doc.ID,
			UserID:     doc.UserID,
			ReviewerID: reviewerID,
			Status:     string(doc.Status),
		}); err != nil {
			log.Error("failed to emit event", "error", err)
		}
	}
	return doc, nil
}
