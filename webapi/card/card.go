package card

import (
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/middleware"
	authsvc "github.com/amirasaad/fintechflow/pkg/service/auth"
	cardsvc "github.com/amirasaad/fintechflow/pkg/service/card"
	"github.com/amirasaad/fintechflow/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func Routes(
	r fiber.Router,
	cardSvc *cardsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	g := r.Group("/cards", middleware.JwtProtected(cfg.Auth.Jwt))
	g.Post("/create", CreateCard(cardSvc, authSvc))
	g.Get("/", ListCards(cardSvc, authSvc))
	g.Get("/:id", GetCard(cardSvc, authSvc))
	g.Put("/:id/block", BlockCard(cardSvc, authSvc))
	g.Put("/:id/unblock", UnblockCard(cardSvc, authSvc))
	g.Put("/:id/limits", UpdateLimits(cardSvc, authSvc))
	g.Get("/:id/transactions", ListTransactions(cardSvc, authSvc))
}

// CreateCard issues a virtual card to a KYC-approved caller.
// @Summary Create a virtual card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body CreateInput true "Card data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /api/cards/create [post]
// @Security Bearer
func CreateCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateInput](c)
		if input == nil {
			return err
		}
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		created, err := cardSvc.CreateCard(c.Context(), userID, cardsvc.CreateInput{
			HolderName:   input.CardHolderName,
			DailyLimit:   input.DailyLimit,
			MonthlyLimit: input.MonthlyLimit,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Card creation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Card created", created)
	}
}

// ListCards returns the caller's cards.
// @Summary List cards
// @Tags cards
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/cards [get]
// @Security Bearer
func ListCards(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		cards, err := cardSvc.ListCards(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list cards", err)
		}
		if cards == nil {
			cards = []*card.Card{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Cards fetched", cards)
	}
}

// GetCard returns one of the caller's cards.
// @Summary Get card
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/cards/{id} [get]
// @Security Bearer
func GetCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return withCard(authSvc, "Card not found", func(c *fiber.Ctx, cardID, userID uuid.UUID) error {
		found, err := cardSvc.GetCard(c.Context(), cardID, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Card not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card found", found)
	})
}

// BlockCard stops a card from authorizing charges.
// @Summary Block card
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/cards/{id}/block [put]
// @Security Bearer
func BlockCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return withCard(authSvc, "Failed to block card", func(c *fiber.Ctx, cardID, userID uuid.UUID) error {
		updated, err := cardSvc.Block(c.Context(), cardID, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to block card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card blocked successfully", updated)
	})
}

// UnblockCard reactivates a blocked card.
// @Summary Unblock card
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/cards/{id}/unblock [put]
// @Security Bearer
func UnblockCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return withCard(authSvc, "Failed to unblock card", func(c *fiber.Ctx, cardID, userID uuid.UUID) error {
		updated, err := cardSvc.Unblock(c.Context(), cardID, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to unblock card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card unblocked successfully", updated)
	})
}

// UpdateLimits replaces the card's daily and monthly caps.
// @Summary Update card limits
// @Tags cards
// @Accept json
// @Produce json
// @Param id path string true "Card ID"
// @Param request body UpdateLimitsInput true "New limits"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/cards/{id}/limits [put]
// @Security Bearer
func UpdateLimits(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return withCard(authSvc, "Failed to update limits", func(c *fiber.Ctx, cardID, userID uuid.UUID) error {
		input, err := common.BindAndValidate[UpdateLimitsInput](c)
		if input == nil {
			return err
		}
		updated, err := cardSvc.UpdateLimits(c.Context(), cardID, userID, *input.DailyLimit, *input.MonthlyLimit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update limits", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card limits updated successfully", updated)
	})
}

// ListTransactions returns the card's entries, newest first.
// @Summary List card transactions
// @Tags cards
// @Produce json
// @Param id path string true "Card ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/cards/{id}/transactions [get]
// @Security Bearer
func ListTransactions(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return withCard(authSvc, "Card not found", func(c *fiber.Ctx, cardID, userID uuid.UUID) error {
		txs, err := cardSvc.ListCardTransactions(c.Context(), cardID, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Card not found", err)
		}
		if txs == nil {
			txs = []*card.Transaction{}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card transactions fetched", txs)
	})
}

// withCard resolves the caller and the :id parameter before calling next.
func withCard(
	authSvc *authsvc.Service,
	title string,
	next func(c *fiber.Ctx, cardID, userID uuid.UUID) error,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		cardID, err := common.ParamUUID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return next(c, cardID, userID)
	}
}
