package pix_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/webapi/common"
	webtest "github.com/amirasaad/fintechflow/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type PixTestSuite struct {
	webtest.E2ETestSuite
	aliceToken string
	alice      *user.User
	bobToken   string
	bob        *user.User
}

func TestPixTestSuite(t *testing.T) {
	suite.Run(t, new(PixTestSuite))
}

func (s *PixTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.aliceToken, s.alice = s.Register("alice@example.com", "Alice Lima")
	s.bobToken, s.bob = s.Register("bob@example.com", "Bob Costa")
	s.App.Fund(s.T(), s.alice, "100.00")
}

func (s *PixTestSuite) account(token string) pix.Account {
	resp := s.MakeRequest(fiber.MethodGet, "/api/pix/account", "", token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var acc pix.Account
	s.DecodeEnvelope(resp, &acc)
	return acc
}

func transferBody(to, amount string) string {
	return fmt.Sprintf(`{"to_pix_key":%q,"amount":%s,"description":"rent"}`, to, amount)
}

func (s *PixTestSuite) TestGetAccount() {
	acc := s.account(s.aliceToken)
	s.Equal("alice@example.com", acc.PixKey)
	s.Equal(pix.KeyEmail, acc.PixKeyType)
	s.Equal("100.00", acc.Balance.String())
}

func (s *PixTestSuite) TestTransfer() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/pix/transfer",
		transferBody("bob@example.com", "70"), s.aliceToken)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out struct {
		TransactionID string      `json:"transaction_id"`
		Amount        money.Money `json:"amount"`
		Status        string      `json:"status"`
	}
	s.DecodeEnvelope(resp, &out)
	s.NotEmpty(out.TransactionID)
	s.Equal("70.00", out.Amount.String())
	s.Equal(string(pix.StatusCompleted), out.Status)

	s.Equal("30.00", s.account(s.aliceToken).Balance.String())
	s.Equal("70.00", s.account(s.bobToken).Balance.String())

	resp = s.MakeRequest(fiber.MethodGet, "/api/pix/transactions", "", s.bobToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var txs []pix.Transaction
	s.DecodeEnvelope(resp, &txs)
	s.Len(txs, 1)
}

func (s *PixTestSuite) TestTransfer_Rejections() {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"insufficient funds", transferBody("bob@example.com", "100.01"), fiber.StatusBadRequest},
		{"self transfer", transferBody("alice@example.com", "1"), fiber.StatusBadRequest},
		{"unknown key", transferBody("nobody@example.com", "1"), fiber.StatusNotFound},
		{"zero amount", transferBody("bob@example.com", "0"), fiber.StatusBadRequest},
		{"three decimals", transferBody("bob@example.com", "1.001"), fiber.StatusBadRequest},
		{"missing key", `{"amount":1}`, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			resp := s.MakeRequest(fiber.MethodPost, "/api/pix/transfer", tc.body, s.aliceToken)
			s.Equal(tc.status, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
	s.Equal("100.00", s.account(s.aliceToken).Balance.String())
}

func (s *PixTestSuite) TestTransfer_IdempotencyKeyReplays() {
	headers := map[string]string{common.IdempotencyKeyHeader: "retry-1"}
	body := transferBody("bob@example.com", "25")

	first := s.MakeRequest(fiber.MethodPost, "/api/pix/transfer", body, s.aliceToken, headers)
	s.Require().Equal(fiber.StatusCreated, first.StatusCode)
	s.Empty(first.Header.Get(common.IdempotentReplayedHeader))
	var a struct {
		TransactionID string `json:"transaction_id"`
	}
	s.DecodeEnvelope(first, &a)

	second := s.MakeRequest(fiber.MethodPost, "/api/pix/transfer", body, s.aliceToken, headers)
	s.Require().Equal(fiber.StatusCreated, second.StatusCode)
	s.Equal("true", second.Header.Get(common.IdempotentReplayedHeader))
	var b struct {
		TransactionID string `json:"transaction_id"`
	}
	s.DecodeEnvelope(second, &b)

	s.Equal(a.TransactionID, b.TransactionID)
	s.Equal("75.00", s.account(s.aliceToken).Balance.String())
}

func (s *PixTestSuite) TestTransfer_IdempotencyKeyTooLong() {
	headers := map[string]string{common.IdempotencyKeyHeader: strings.Repeat("k", 256)}
	resp := s.MakeRequest(fiber.MethodPost, "/api/pix/transfer",
		transferBody("bob@example.com", "1"), s.aliceToken, headers)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *PixTestSuite) TestGenerateAndPayQR() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/pix/generate-qr",
		`{"amount":42.5,"description":"coffee"}`, s.bobToken)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var qr struct {
		QRCode  string      `json:"qr_code"`
		PixKey  string      `json:"pix_key"`
		Amount  money.Money `json:"amount"`
		Payload string      `json:"payload"`
	}
	s.DecodeEnvelope(resp, &qr)
	s.NotEmpty(qr.QRCode)
	s.Equal("bob@example.com", qr.PixKey)
	s.Equal("42.50", qr.Amount.String())

	body := fmt.Sprintf(`{"payload":%q}`, qr.Payload)
	resp = s.MakeRequest(fiber.MethodPost, "/api/pix/pay-qr", body, s.aliceToken)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	s.Equal("57.50", s.account(s.aliceToken).Balance.String())
	s.Equal("42.50", s.account(s.bobToken).Balance.String())
}

func (s *PixTestSuite) TestPayQR_Malformed() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/pix/pay-qr", `{"payload":"not json"}`, s.aliceToken)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *PixTestSuite) TestRequiresToken() {
	for _, path := range []string{"/api/pix/account", "/api/pix/transactions"} {
		resp := s.MakeRequest(fiber.MethodGet, path, "", "")
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}
