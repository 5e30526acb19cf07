// Package testutils drives the HTTP surface end to end on an in-memory
// database.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/testutils"
	"github.com/amirasaad/fintechflow/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// Envelope mirrors common.Response with raw data for decoding into
// concrete types.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Problem mirrors common.ProblemDetails.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// E2ETestSuite wires the full Fiber app against a fresh database per test.
type E2ETestSuite struct {
	suite.Suite
	App   *testutils.TestApp
	Fiber *fiber.App
	// Config is applied on the next SetupTest when set.
	Config *config.App
}

func (s *E2ETestSuite) SetupTest() {
	s.App = testutils.NewTestApp(s.T(), s.Config)
	s.Fiber = webapi.SetupApp(s.App.App)
}

// MakeRequestWithApp is a helper for making HTTP requests in tests
func MakeRequestWithApp(
	app *fiber.App,
	method, path, body, token string,
	headers ...map[string]string,
) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

// MakeRequest sends a request to the suite's app.
func (s *E2ETestSuite) MakeRequest(
	method, path, body, token string,
	headers ...map[string]string,
) *http.Response {
	return MakeRequestWithApp(s.Fiber, method, path, body, token, headers...)
}

// DecodeEnvelope reads a success response, decoding data into out when non-nil.
func (s *E2ETestSuite) DecodeEnvelope(resp *http.Response, out any) Envelope {
	defer resp.Body.Close() //nolint: errcheck
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var env Envelope
	s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	if out != nil {
		s.Require().NoError(json.Unmarshal(env.Data, out), string(raw))
	}
	return env
}

// DecodeProblem reads a problem details response.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) Problem {
	defer resp.Body.Close() //nolint: errcheck
	s.Equal("application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var p Problem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// Register signs up through the API and returns the access token and user.
func (s *E2ETestSuite) Register(email, fullName string) (string, *user.User) {
	body := fmt.Sprintf(`{"email":%q,"password":%q,"full_name":%q}`, email, testutils.TestPassword, fullName)
	resp := s.MakeRequest(fiber.MethodPost, "/api/auth/register", body, "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out struct {
		AccessToken string     `json:"access_token"`
		User        *user.User `json:"user"`
	}
	s.DecodeEnvelope(resp, &out)
	s.Require().NotEmpty(out.AccessToken)
	return out.AccessToken, out.User
}

// Login signs in through the API and returns the access token.
func (s *E2ETestSuite) Login(email string) string {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, testutils.TestPassword)
	resp := s.MakeRequest(fiber.MethodPost, "/api/auth/login", body, "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	s.DecodeEnvelope(resp, &out)
	return out.AccessToken
}

// Admin registers an address listed in AUTH_ADMIN_EMAILS.
func (s *E2ETestSuite) Admin() (string, *user.User) {
	return s.Register("admin@example.com", "Admin")
}
