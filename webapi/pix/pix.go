package pix

import (
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/amirasaad/fintechflow/pkg/middleware"
	authsvc "github.com/amirasaad/fintechflow/pkg/service/auth"
	pixsvc "github.com/amirasaad/fintechflow/pkg/service/pix"
	"github.com/amirasaad/fintechflow/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	r fiber.Router,
	pixSvc *pixsvc.Service,
	authSvc *authsvc.Service,
	guard *idempotency.Guard,
	cfg *config.App,
) {
	g := r.Group("/pix", middleware.JwtProtected(cfg.Auth.Jwt))
	g.Get("/account", GetAccount(pixSvc, authSvc))
	g.Post("/generate-qr", GenerateQR(pixSvc, authSvc))
	g.Post("/pay-qr", PayQR(pixSvc, authSvc, guard))
	g.Post("/transfer", Transfer(pixSvc, authSvc, guard))
	g.Get("/transactions", ListTransactions(pixSvc, authSvc))
}

// GetAccount returns the caller's PIX account.
// @Summary Get PIX account
// @Tags pix
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/pix/account [get]
// @Security Bearer
func GetAccount(pixSvc *pixsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		acc, err := pixSvc.GetAccount(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "PIX account not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "PIX account", acc)
	}
}

// GenerateQR renders a payment request for the caller's account.
// @Summary Generate a payment QR code
// @Tags pix
// @Accept json
// @Produce json
// @Param request body GenerateQRInput true "Requested amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/pix/generate-qr [post]
// @Security Bearer
func GenerateQR(pixSvc *pixsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[GenerateQRInput](c)
		if input == nil {
			return err
		}
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		qr, err := pixSvc.GeneratePaymentRequest(c.Context(), userID, input.Amount, input.Description)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to generate QR code", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "QR code generated", qr)
	}
}

// Transfer sends money to another PIX key. Retries carrying the same
// Idempotency-Key return the first response.
// @Summary PIX transfer
// @Tags pix
// @Accept json
// @Produce json
// @Param request body TransferInput true "Transfer data"
// @Param Idempotency-Key header string false "Retry key"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/pix/transfer [post]
// @Security Bearer
func Transfer(pixSvc *pixsvc.Service, authSvc *authsvc.Service, guard *idempotency.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferInput](c)
		if input == nil {
			return err
		}
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		return common.Idempotent(c, guard, "pix:transfer:"+userID.String(), "Transfer failed",
			func() (*common.Outcome, error) {
				tx, err := pixSvc.Transfer(c.UserContext(), userID, input.ToPixKey, input.Amount, input.Description)
				if err != nil {
					return nil, err
				}
				return transferOutcome("Transfer completed", tx), nil
			})
	}
}

// PayQR pays a payment request payload.
// @Summary Pay a QR payment request
// @Tags pix
// @Accept json
// @Produce json
// @Param request body PayQRInput true "QR payload"
// @Param Idempotency-Key header string false "Retry key"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/pix/pay-qr [post]
// @Security Bearer
func PayQR(pixSvc *pixsvc.Service, authSvc *authsvc.Service, guard *idempotency.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[PayQRInput](c)
		if input == nil {
			return err
		}
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		return common.Idempotent(c, guard, "pix:pay-qr:"+userID.String(), "Payment failed",
			func() (*common.Outcome, error) {
				tx, err := pixSvc.PayPaymentRequest(c.UserContext(), userID, input.Payload)
				if err != nil {
					return nil, err
				}
				return transferOutcome("Payment completed", tx), nil
			})
	}
}

// ListTransactions returns the caller's transactions, newest first.
// @Summary List PIX transactions
// @Tags pix
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/pix/transactions [get]
// @Security Bearer
func ListTransactions(pixSvc *pixsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		txs, err := pixSvc.ListTransactions(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		if txs == nil {
			txs = []*pix.Transaction{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", txs)
	}
}

func transferOutcome(message string, tx *pix.Transaction) *common.Outcome {
	return &common.Outcome{
		Status:  fiber.StatusCreated,
		Message: message,
		Data: TransferResponse{
			TransactionID: tx.ID.String(),
			Amount:        tx.Amount,
			ToPixKey:      tx.ToPixKey,
			Status:        string(tx.Status),
		},
	}
}
