package common

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdempotencyKeyHeader carries the client's retry key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayedHeader is set on responses served from the store.
	IdempotentReplayedHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
)

// Outcome is a successful handler result before it is written.
type Outcome struct {
	Status  int
	Message string
	Data    any
}

// Idempotent runs fn at most once per Idempotency-Key within scope and
// replays the stored response for retries. Requests without the header run
// fn directly. Failures are written as problem details and never stored.
func Idempotent(
	c *fiber.Ctx,
	guard *idempotency.Guard,
	scope, title string,
	fn func() (*Outcome, error),
) error {
	key := c.Get(IdempotencyKeyHeader)
	if key == "" || guard == nil {
		out, err := fn()
		if err != nil {
			return ProblemDetailsJSON(c, title, err)
		}
		return SuccessResponseJSON(c, out.Status, out.Message, out.Data)
	}
	if len(key) > maxIdempotencyKeyLen {
		return ProblemDetailsJSON(c, "Invalid Idempotency-Key",
			fmt.Errorf("%w: idempotency key too long", domain.ErrInvalidArgument))
	}

	res, replayed, err := guard.Do(c.UserContext(), scope+":"+key, func() (*idempotency.Result, error) {
		out, err := fn()
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(Response{Status: out.Status, Message: out.Message, Data: out.Data})
		if err != nil {
			return nil, err
		}
		return &idempotency.Result{StatusCode: out.Status, Body: body}, nil
	})
	if err != nil {
		return ProblemDetailsJSON(c, title, err)
	}
	if replayed {
		c.Set(IdempotentReplayedHeader, "true")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(res.StatusCode).Send(res.Body)
}
