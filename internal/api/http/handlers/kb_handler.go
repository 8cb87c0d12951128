package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// KBHandler manages knowledge base endpoints.
type KBHandler struct {
	service *service.KBService
}

// NewKBHandler constructs handler.
func NewKBHandler(kbService *service.KBService) *KBHandler {
	return &KBHandler{service: kbService}
}

// Search GET /kb/search?q=...&category=...&limit=...
func (h *KBHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	category := domain.TicketCategory(c.Query("category"))
	limit := parseInt(c.Query("limit"), 3)

	articles, err := h.service.Search(c.Context(), query, category, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponses(articles)})
}

// ListArticles GET /kb/articles. Staff sees drafts via ?status=draft.
func (h *KBHandler) ListArticles(c *fiber.Ctx) error {
	status := domain.ArticleStatus(c.Query("status", string(domain.ArticleStatusPublished)))
	if status == domain.ArticleStatusDraft {
		user, ok := auth.UserFromContext(c)
		if !ok || !user.Role.IsStaff() {
			return util.NewForbidden("staff access required")
		}
	}
	articles, err := h.service.ListArticles(c.Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponses(articles)})
}

// GetArticle GET /kb/articles/:id.
func (h *KBHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.service.GetArticle(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

// CreateArticle POST /kb/articles. Staff only.
func (h *KBHandler) CreateArticle(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("user required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	article := &domain.Article{
		Title:  req.Title,
		Body:   req.Body,
		Tags:   req.Tags,
		Status: req.Status,
	}
	if err := h.service.CreateArticle(c.Context(), user.ID, article); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": articleResponse(article)})
}

// UpdateArticle PUT /kb/articles/:id. Staff only.
func (h *KBHandler) UpdateArticle(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.GetArticle(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	article.Title = req.Title
	article.Body = req.Body
	article.Tags = req.Tags
	if req.Status != "" {
		article.Status = req.Status
	}
	if err := h.service.UpdateArticle(c.Context(), article); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

// DeleteArticle DELETE /kb/articles/:id. Staff only.
func (h *KBHandler) DeleteArticle(c *fiber.Ctx) error {
	if err := h.service.DeleteArticle(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func articleResponses(articles []domain.Article) []dto.ArticleResponse {
	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, articleResponse(&articles[i]))
	}
	return items
}

func articleResponse(article *domain.Article) dto.ArticleResponse {
	return dto.ArticleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Body:      article.Body,
		Tags:      article.Tags,
		Status:    article.Status,
		AuthorID:  article.AuthorID,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}
