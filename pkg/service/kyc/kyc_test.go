package kyc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	kycsvc "github.com/amirasaad/fintechflow/pkg/service/kyc"
	"github.com/amirasaad/fintechflow/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_NotSubmitted(t *testing.T) {
	a := testutils.NewTestApp(t)
	u := a.RegisterUser(t, testutils.RandomEmail(), "Joana")

	view, err := a.KYCService.Status(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusNotSubmitted, view.Status)
	assert.Nil(t, view.SubmittedAt)
}

func TestSubmitAndReview(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	submitted := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	kycsvc.SetClock(a.KYCService, func() time.Time { return submitted })

	u := a.RegisterUser(t, testutils.RandomEmail(), "Joana")
	reviewer := a.RegisterUser(t, "admin@example.com", "Admin")
	require.Equal(t, user.RoleAdmin, reviewer.Role)

	doc, err := a.KYCService.Submit(ctx, u.ID, testutils.SampleKYC())
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusAnalyzing, doc.Status)

	me, err := a.UserService.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.KYCInReview, me.KYCStatus)

	_, err = a.KYCService.Submit(ctx, u.ID, testutils.SampleKYC())
	assert.ErrorIs(t, err, kyc.ErrAlreadySubmitted)

	pending, err := a.KYCService.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, doc.ID, pending[0].KYCID)
	assert.Equal(t, "Joana", pending[0].UserName)

	_, err = a.KYCService.Review(ctx, doc.ID, reviewer.ID, kyc.StatusInReview, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = a.KYCService.Review(ctx, uuid.New(), reviewer.ID, kyc.StatusApproved, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	reviewed, err := a.KYCService.Review(ctx, doc.ID, reviewer.ID, kyc.StatusApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewerID)
	assert.Equal(t, reviewer.ID, *reviewed.ReviewerID)

	me, err = a.UserService.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.KYCApproved, me.KYCStatus)

	view, err := a.KYCService.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusApproved, view.Status)
	require.NotNil(t, view.SubmittedAt)
	assert.True(t, submitted.Equal(*view.SubmittedAt))
	require.NotNil(t, view.ReviewerNotes)
	assert.Equal(t, "looks good", *view.ReviewerNotes)

	pending, err = a.KYCService.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReview_RepeatIsNoOpAndFlipIsRejected(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	u := a.RegisterUser(t, testutils.RandomEmail(), "Joana")
	reviewer := uuid.New()

	doc, err := a.KYCService.Submit(ctx, u.ID, testutils.SampleKYC())
	require.NoError(t, err)
	_, err = a.KYCService.Review(ctx, doc.ID, reviewer, kyc.StatusRejected, "blurry")
	require.NoError(t, err)

	a.Bus.ClearPublished()
	again, err := a.KYCService.Review(ctx, doc.ID, reviewer, kyc.StatusRejected, "blurry")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusRejected, again.Status)
	for _, e := range a.Bus.Published() {
		assert.NotEqual(t, string(events.EventTypeKYCReviewed), e.Type())
	}

	_, err = a.KYCService.Review(ctx, doc.ID, reviewer, kyc.StatusApproved, "")
	assert.ErrorIs(t, err, kyc.ErrAlreadyReviewed)
	assert.ErrorIs(t, err, domain.ErrFailedPrecondition)

	me, err := a.UserService.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.KYCRejected, me.KYCStatus)

	// A rejected user may resubmit.
	resubmitted, err := a.KYCService.Submit(ctx, u.ID, testutils.SampleKYC())
	require.NoError(t, err)
	assert.NotEqual(t, doc.ID, resubmitted.ID)
}

func TestSubmit_ConcurrentOnlyOneAccepted(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	u := a.RegisterUser(t, testutils.RandomEmail(), "Joana")

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.KYCService.Submit(ctx, u.ID, testutils.SampleKYC())
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, kyc.ErrAlreadySubmitted), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	pending, err := a.KYCService.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmit_InvalidDocumentType(t *testing.T) {
	a := testutils.NewTestApp(t)
	u := a.RegisterUser(t, testutils.RandomEmail(), "Joana")
	in := testutils.SampleKYC()
	in.DocumentType = "passport-card"

	_, err := a.KYCService.Submit(context.Background(), u.ID, in)
	assert.ErrorIs(t, err, kyc.ErrInvalidDocumentType)

	view, err := a.KYCService.Status(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusNotSubmitted, view.Status)
}
