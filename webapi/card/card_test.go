package card_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/testutils"
	webtest "github.com/amirasaad/fintechflow/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CardTestSuite struct {
	webtest.E2ETestSuite
	token string
	owner *user.User
}

func TestCardTestSuite(t *testing.T) {
	suite.Run(t, new(CardTestSuite))
}

func (s *CardTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.token, s.owner = s.Register(testutils.RandomEmail(), "Carla Dias")
}

func (s *CardTestSuite) approve() {
	s.App.ApproveKYC(s.T(), s.owner, uuid.New())
}

func (s *CardTestSuite) create(body string) *card.Card {
	resp := s.MakeRequest(fiber.MethodPost, "/api/cards/create", body, s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var c card.Card
	s.DecodeEnvelope(resp, &c)
	return &c
}

func (s *CardTestSuite) TestCreate_RequiresApprovedKYC() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/cards/create", `{}`, s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	p := s.DecodeProblem(resp)
	s.Equal("Card creation failed", p.Title)
}

func (s *CardTestSuite) TestCreate_Defaults() {
	s.approve()
	c := s.create(`{}`)
	s.Len(c.CardNumber, 16)
	s.Len(c.CVV, 3)
	s.Equal("CARLA DIAS", c.CardHolderName)
	s.Equal(card.StatusActive, c.Status)
	s.Equal("5000.00", c.DailyLimit.String())
	s.Equal("50000.00", c.MonthlyLimit.String())
}

func (s *CardTestSuite) TestCreate_InvalidLimits() {
	s.approve()
	resp := s.MakeRequest(fiber.MethodPost, "/api/cards/create",
		`{"daily_limit":-1,"monthly_limit":500}`, s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *CardTestSuite) TestListGetBlockUnblock() {
	s.approve()
	c := s.create(`{"card_holder_name":"C DIAS","daily_limit":100,"monthly_limit":1000}`)
	base := "/api/cards/" + c.ID.String()

	resp := s.MakeRequest(fiber.MethodGet, "/api/cards/", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var cards []card.Card
	s.DecodeEnvelope(resp, &cards)
	s.Len(cards, 1)

	resp = s.MakeRequest(fiber.MethodGet, base, "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var got card.Card
	s.DecodeEnvelope(resp, &got)
	s.Equal("C DIAS", got.CardHolderName)

	resp = s.MakeRequest(fiber.MethodPut, base+"/block", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.DecodeEnvelope(resp, &got)
	s.Equal(card.StatusBlocked, got.Status)
	s.NotNil(got.BlockedAt)

	resp = s.MakeRequest(fiber.MethodPut, base+"/unblock", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	got = card.Card{}
	s.DecodeEnvelope(resp, &got)
	s.Equal(card.StatusActive, got.Status)
	s.Nil(got.BlockedAt)
}

func (s *CardTestSuite) TestUpdateLimits() {
	s.approve()
	c := s.create(`{}`)
	path := fmt.Sprintf("/api/cards/%s/limits", c.ID)

	resp := s.MakeRequest(fiber.MethodPut, path, `{"daily_limit":250.5,"monthly_limit":2000}`, s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var got card.Card
	s.DecodeEnvelope(resp, &got)
	s.Equal("250.50", got.DailyLimit.String())
	s.Equal("2000.00", got.MonthlyLimit.String())

	resp = s.MakeRequest(fiber.MethodPut, path, `{"daily_limit":100,"monthly_limit":-5}`, s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *CardTestSuite) TestUpdateLimits_RequiresBothLimits() {
	s.approve()
	c := s.create(`{"daily_limit":300,"monthly_limit":3000}`)
	path := fmt.Sprintf("/api/cards/%s/limits", c.ID)

	for _, body := range []string{
		`{}`,
		`{"daily_limit":100}`,
		`{"monthly_limit":100}`,
		`{"daily_limit":null,"monthly_limit":100}`,
	} {
		resp := s.MakeRequest(fiber.MethodPut, path, body, s.token)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode, body)
		_ = resp.Body.Close()
	}

	resp := s.MakeRequest(fiber.MethodGet, "/api/cards/"+c.ID.String(), "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var got card.Card
	s.DecodeEnvelope(resp, &got)
	s.Equal("300.00", got.DailyLimit.String())
	s.Equal("3000.00", got.MonthlyLimit.String())
}

func (s *CardTestSuite) TestOtherUsersCardIsNotFound() {
	s.approve()
	c := s.create(`{}`)
	strangerToken, _ := s.Register(testutils.RandomEmail(), "Stranger")

	for _, req := range []struct{ method, path string }{
		{fiber.MethodGet, "/api/cards/" + c.ID.String()},
		{fiber.MethodPut, "/api/cards/" + c.ID.String() + "/block"},
		{fiber.MethodGet, "/api/cards/" + c.ID.String() + "/transactions"},
	} {
		resp := s.MakeRequest(req.method, req.path, "", strangerToken)
		s.Equal(fiber.StatusNotFound, resp.StatusCode, req.path)
		_ = resp.Body.Close()
	}
}

func (s *CardTestSuite) TestInvalidCardID() {
	resp := s.MakeRequest(fiber.MethodGet, "/api/cards/not-a-uuid", "", s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
