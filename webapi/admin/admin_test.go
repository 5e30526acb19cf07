package admin_test

import (
	"context"
	"fmt"
	"testing"

	infra_repository "github.com/amirasaad/fintechflow/infra/repository"
	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/money"
	cardsvc "github.com/amirasaad/fintechflow/pkg/service/card"
	"github.com/amirasaad/fintechflow/pkg/testutils"
	"github.com/amirasaad/fintechflow/webapi/common"
	webtest "github.com/amirasaad/fintechflow/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AdminTestSuite struct {
	webtest.E2ETestSuite
	adminToken string
	admin      *user.User
	userToken  string
	customer   *user.User
}

func TestAdminTestSuite(t *testing.T) {
	suite.Run(t, new(AdminTestSuite))
}

func (s *AdminTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.adminToken, s.admin = s.Admin()
	s.userToken, s.customer = s.Register("customer@example.com", "Customer One")
}

func (s *AdminTestSuite) TestNonAdminIsForbidden() {
	for _, req := range []struct{ method, path, body string }{
		{fiber.MethodGet, "/api/admin/kyc/pending", ""},
		{fiber.MethodPost, "/api/admin/pix/deposit", `{"pix_key":"customer@example.com","amount":10}`},
		{fiber.MethodPost, "/api/admin/cards/" + uuid.NewString() + "/charge", `{"amount":1,"merchant_name":"M"}`},
	} {
		resp := s.MakeRequest(req.method, req.path, req.body, s.userToken)
		s.Equal(fiber.StatusForbidden, resp.StatusCode, req.path)
		_ = resp.Body.Close()
	}

	resp := s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", "")
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *AdminTestSuite) TestRoleChangesApplyToIssuedTokens() {
	ctx := context.Background()
	resp := s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", s.userToken)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	_, err := s.App.UserService.Promote(ctx, s.customer.Email)
	s.Require().NoError(err)
	resp = s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", s.userToken)
	s.Equal(fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	users := infra_repository.NewUserRepository(s.App.DB)
	s.Require().NoError(users.SetRole(ctx, s.admin.ID, user.RoleUser))
	resp = s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", s.adminToken)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	ghost, err := s.App.AuthService.GenerateToken(ctx, &user.User{
		ID:    uuid.New(),
		Email: "ghost@example.com",
		Role:  user.RoleAdmin,
	})
	s.Require().NoError(err)
	resp = s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", ghost)
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *AdminTestSuite) TestReviewKYC() {
	doc, err := s.App.KYCService.Submit(context.Background(), s.customer.ID, testutils.SampleKYC())
	s.Require().NoError(err)

	resp := s.MakeRequest(fiber.MethodGet, "/api/admin/kyc/pending", "", s.adminToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var pending []kyc.PendingSummary
	s.DecodeEnvelope(resp, &pending)
	s.Require().Len(pending, 1)
	s.Equal(doc.ID, pending[0].KYCID)
	s.Equal("customer@example.com", pending[0].UserEmail)

	path := fmt.Sprintf("/api/admin/kyc/%s/review", doc.ID)
	resp = s.MakeRequest(fiber.MethodPut, path, `{"status":"pending"}`, s.adminToken)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodPut, path, `{"status":"approved","notes":"looks good"}`, s.adminToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var reviewed kyc.Document
	s.DecodeEnvelope(resp, &reviewed)
	s.Equal(kyc.StatusApproved, reviewed.Status)
	s.Require().NotNil(reviewed.ReviewerID)
	s.Equal(s.admin.ID, *reviewed.ReviewerID)

	resp = s.MakeRequest(fiber.MethodPut, path, `{"status":"rejected"}`, s.adminToken)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodPut,
		fmt.Sprintf("/api/admin/kyc/%s/review", uuid.New()), `{"status":"approved"}`, s.adminToken)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *AdminTestSuite) TestDeposit() {
	headers := map[string]string{common.IdempotencyKeyHeader: "seed-1"}
	body := `{"pix_key":"customer@example.com","amount":150.25,"description":"seed"}`

	for i := range 2 {
		resp := s.MakeRequest(fiber.MethodPost, "/api/admin/pix/deposit", body, s.adminToken, headers)
		s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
		var tx pix.Transaction
		s.DecodeEnvelope(resp, &tx)
		s.Equal(pix.TypeDeposit, tx.TransactionType)
		if i == 1 {
			s.Equal("true", resp.Header.Get(common.IdempotentReplayedHeader))
		}
	}
	s.Equal("150.25", s.App.Balance(s.T(), s.customer).String())

	resp := s.MakeRequest(fiber.MethodPost, "/api/admin/pix/deposit",
		`{"pix_key":"missing@example.com","amount":1}`, s.adminToken)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *AdminTestSuite) TestChargeAndRefund() {
	s.App.ApproveKYC(s.T(), s.customer, s.admin.ID)
	issued, err := s.App.CardService.CreateCard(context.Background(), s.customer.ID, cardInput("100"))
	s.Require().NoError(err)
	chargePath := fmt.Sprintf("/api/admin/cards/%s/charge", issued.ID)

	resp := s.MakeRequest(fiber.MethodPost, chargePath, `{"amount":60,"merchant_name":"Padaria"}`, s.adminToken)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var tx card.Transaction
	s.DecodeEnvelope(resp, &tx)
	s.Equal(card.TxCompleted, tx.Status)

	resp = s.MakeRequest(fiber.MethodPost, chargePath, `{"amount":60,"merchant_name":"Padaria"}`, s.adminToken)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	p := s.DecodeProblem(resp)
	s.Equal("Charge declined", p.Title)

	refundPath := fmt.Sprintf("/api/admin/cards/%s/refund", issued.ID)
	resp = s.MakeRequest(fiber.MethodPost, refundPath, fmt.Sprintf(`{"transaction_id":%q}`, tx.ID), s.adminToken)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodPost, chargePath, `{"amount":60,"merchant_name":"Padaria"}`, s.adminToken)
	s.Equal(fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodGet, fmt.Sprintf("/api/cards/%s/transactions", issued.ID), "", s.userToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var txs []card.Transaction
	s.DecodeEnvelope(resp, &txs)
	s.Len(txs, 3)
}

func (s *AdminTestSuite) TestChargeUnknownCard() {
	resp := s.MakeRequest(fiber.MethodPost, fmt.Sprintf("/api/admin/cards/%s/charge", uuid.New()),
		`{"amount":1,"merchant_name":"M"}`, s.adminToken)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func cardInput(daily string) cardsvc.CreateInput {
	limit := money.Must(daily)
	return cardsvc.CreateInput{DailyLimit: &limit}
}
