package kyc

import (
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/middleware"
	authsvc "github.com/amirasaad/fintechflow/pkg/service/auth"
	kycsvc "github.com/amirasaad/fintechflow/pkg/service/kyc"
	"github.com/amirasaad/fintechflow/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	r fiber.Router,
	kycSvc *kycsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	g := r.Group("/kyc", middleware.JwtProtected(cfg.Auth.Jwt))
	g.Post("/submit", Submit(kycSvc, authSvc))
	g.Get("/status", Status(kycSvc, authSvc))
}

// Submit records the caller's identity documents for review.
// @Summary Submit KYC documents
// @Tags kyc
// @Accept json
// @Produce json
// @Param request body SubmitInput true "Document data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /api/kyc/submit [post]
// @Security Bearer
func Submit(kycSvc *kycsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SubmitInput](c)
		if input == nil {
			return err
		}
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		doc, err := kycSvc.Submit(c.Context(), userID, kycsvc.SubmitInput{
			DocumentType:   kyc.DocumentType(input.DocumentType),
			DocumentNumber: input.DocumentNumber,
			DocumentImage:  input.DocumentImage,
			SelfieImage:    input.SelfieImage,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "KYC submission failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "KYC documents submitted for review", SubmitResponse{
			KYCID:  doc.ID.String(),
			Status: string(doc.Status),
		})
	}
}

// Status returns the caller's latest verification state.
// @Summary KYC status
// @Tags kyc
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/kyc/status [get]
// @Security Bearer
func Status(kycSvc *kycsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		view, err := kycSvc.Status(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load KYC status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC status", view)
	}
}
