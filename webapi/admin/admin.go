// Package admin exposes reviewer and back-office operations. Every route
// requires the admin role.
package admin

import (
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/amirasaad/fintechflow/pkg/middleware"
	authsvc "github.com/amirasaad/fintechflow/pkg/service/auth"
	cardsvc "github.com/amirasaad/fintechflow/pkg/service/card"
	kycsvc "github.com/amirasaad/fintechflow/pkg/service/kyc"
	pixsvc "github.com/amirasaad/fintechflow/pkg/service/pix"
	"github.com/amirasaad/fintechflow/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Services groups what the admin routes operate on.
type Services struct {
	Auth *authsvc.Service
	KYC  *kycsvc.Service
	Pix  *pixsvc.Service
	Card *cardsvc.Service
}

func Routes(r fiber.Router, svc Services, guard *idempotency.Guard, cfg *config.App) {
	g := r.Group("/admin",
		middleware.JwtProtected(cfg.Auth.Jwt),
		middleware.RequireAdmin(svc.Auth),
	)
	g.Get("/kyc/pending", ListPendingKYC(svc.KYC))
	g.Put("/kyc/:id/review", ReviewKYC(svc.KYC, svc.Auth))
	g.Post("/pix/deposit", Deposit(svc.Pix, guard))
	g.Post("/cards/:id/charge", Charge(svc.Card, guard))
	g.Post("/cards/:id/refund", Refund(svc.Card))
}

// ListPendingKYC returns submissions awaiting a decision.
// @Summary Pending KYC submissions
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/admin/kyc/pending [get]
// @Security Bearer
func ListPendingKYC(kycSvc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pending, err := kycSvc.ListPending(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list pending KYC", err)
		}
		if pending == nil {
			pending = []kyc.PendingSummary{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Pending KYC submissions", pending)
	}
}

// ReviewKYC records the reviewer's decision on a submission.
// @Summary Review KYC submission
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "KYC ID"
// @Param request body ReviewInput true "Decision"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/kyc/{id}/review [put]
// @Security Bearer
func ReviewKYC(kycSvc *kycsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kycID, err := common.ParamUUID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err)
		}
		input, err := common.BindAndValidate[ReviewInput](c)
		if input == nil {
			return err
		}
		reviewerID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		doc, err := kycSvc.Review(c.Context(), kycID, reviewerID, kyc.Status(input.Status), input.Notes)
		if err != nil {
			return common.ProblemDetailsJSON(c, "KYC review failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC "+string(doc.Status), doc)
	}
}

// Deposit credits a PIX account out of band.
// @Summary Seed PIX balance
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DepositInput true "Deposit data"
// @Param Idempotency-Key header string false "Retry key"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/pix/deposit [post]
// @Security Bearer
func Deposit(pixSvc *pixsvc.Service, guard *idempotency.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[DepositInput](c)
		if input == nil {
			return err
		}
		return common.Idempotent(c, guard, "admin:deposit", "Deposit failed", func() (*common.Outcome, error) {
			tx, err := pixSvc.Deposit(c.UserContext(), input.PixKey, input.Amount, input.Description)
			if err != nil {
				return nil, err
			}
			return &common.Outcome{Status: fiber.StatusCreated, Message: "Deposit completed", Data: tx}, nil
		})
	}
}

// Charge authorizes a purchase against a card.
// @Summary Charge a card
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body ChargeInput true "Charge data"
// @Param Idempotency-Key header string false "Retry key"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/cards/{id}/charge [post]
// @Security Bearer
func Charge(cardSvc *cardsvc.Service, guard *idempotency.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := common.ParamUUID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid card ID", err)
		}
		input, err := common.BindAndValidate[ChargeInput](c)
		if input == nil {
			return err
		}
		scope := "admin:charge:" + cardID.String()
		return common.Idempotent(c, guard, scope, "Charge declined", func() (*common.Outcome, error) {
			tx, err := cardSvc.Charge(c.UserContext(), cardID, input.Amount, input.MerchantName)
			if err != nil {
				return nil, err
			}
			return &common.Outcome{Status: fiber.StatusCreated, Message: "Charge approved", Data: tx}, nil
		})
	}
}

// Refund reverses a card purchase.
// @Summary Refund a card purchase
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body RefundInput true "Purchase to refund"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/admin/cards/{id}/refund [post]
// @Security Bearer
func Refund(cardSvc *cardsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := common.ParamUUID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid card ID", err)
		}
		input, err := common.BindAndValidate[RefundInput](c)
		if input == nil {
			return err
		}
		txID, err := uuid.Parse(input.TransactionID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err, fiber.StatusBadRequest)
		}
		refund, err := cardSvc.Refund(c.Context(), cardID, txID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Refund failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Refund completed", refund)
	}
}
