package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kycRepository struct {
	db *gorm.DB
}

// NewKYCRepository returns a KYCRepository bound to db.
func NewKYCRepository(db *gorm.DB) repository.KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Create(ctx context.Context, d *kyc.Document) error {
	m := mapKYCDomainToModel(d)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *kycRepository) Get(ctx context.Context, id uuid.UUID) (*kyc.Document, error) {
	var m KYCDocument
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, kyc.ErrDocumentNotFound)
	}
	return mapKYCModelToDomain(&m), nil
}

func (r *kycRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*kyc.Document, error) {
	var m KYCDocument
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, notFoundAs(err, kyc.ErrDocumentNotFound)
	}
	return mapKYCModelToDomain(&m), nil
}

func (r *kycRepository) Latest(ctx context.Context, userID uuid.UUID) (*kyc.Document, error) {
	var m KYCDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapKYCModelToDomain(&m), nil
}

func (r *kycRepository) Update(ctx context.Context, d *kyc.Document) error {
	res := r.db.WithContext(ctx).Model(&KYCDocument{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"status":         string(d.Status),
			"reviewed_at":    d.ReviewedAt,
			"reviewer_id":    d.ReviewerID,
			"reviewer_notes": d.ReviewerNotes,
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return kyc.ErrDocumentNotFound
	}
	return nil
}

type pendingRow struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	DocumentType string
	SubmittedAt  time.Time
	Status       string
}

func (r *kycRepository) ListPending(ctx context.Context, limit int) ([]kyc.PendingSummary, error) {
	var rows []pendingRow
	err := r.db.WithContext(ctx).
		Table("kyc_documents AS k").
		Select("k.id, u.full_name, u.email, k.document_type, k.submitted_at, k.status").
		Joins("JOIN users AS u ON u.id = k.user_id").
		Where("k.status IN ?", []string{
			string(kyc.StatusPending),
			string(kyc.StatusAnalyzing),
			string(kyc.StatusInReview),
		}).
		Order("k.submitted_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]kyc.PendingSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, kyc.PendingSummary{
			KYCID:        row.ID,
			UserName:     row.FullName,
			UserEmail:    row.Email,
			DocumentType: kyc.DocumentType(row.DocumentType),
			SubmittedAt:  row.SubmittedAt,
			Status:       kyc.Status(row.Status),
		})
	}
	return out, nil
}

func mapKYCDomainToModel(d *kyc.Document) KYCDocument {
	return KYCDocument{
		ID:             d.ID,
		UserID:         d.UserID,
		DocumentType:   string(d.DocumentType),
		DocumentNumber: d.DocumentNumber,
		DocumentImage:  d.DocumentImage,
		SelfieImage:    d.SelfieImage,
		Status:         string(d.Status),
		SubmittedAt:    d.SubmittedAt,
		ReviewedAt:     d.ReviewedAt,
		ReviewerID:     d.ReviewerID,
		ReviewerNotes:  d.ReviewerNotes,
	}
}

func mapKYCModelToDomain(m *KYCDocument) *kyc.Document {
	return &kyc.Document{
		ID:             m.ID,
		UserID:         m.UserID,
		DocumentType:   kyc.DocumentType(m.DocumentType),
		DocumentNumber: m.DocumentNumber,
		DocumentImage:  m.DocumentImage,
		SelfieImage:    m.SelfieImage,
		Status:         kyc.Status(m.Status),
		SubmittedAt:    m.SubmittedAt,
		ReviewedAt:     m.ReviewedAt,
		ReviewerID:     m.ReviewerID,
		ReviewerNotes:  m.ReviewerNotes,
	}
}
