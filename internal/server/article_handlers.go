package server

import (
	"hoopsnews/internal/middleware"
	"hoopsnews/internal/models"
	"hoopsnews/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListArticles handles GET /api/articles
func (s *Server) ListArticles(c *fiber.Ctx) error {
	page := parsePagination(c)

	articles, meta, err := s.articleService.ListArticles(c.UserContext(), service.ListArticlesInput{
		Identity:     middleware.IdentityFromCtx(c),
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		Author:       c.Query("author"),
		Tag:          c.Query("tag"),
		Status:       c.Query("status"),
		Sort:         c.Query("sort"),
		Page:         page.Page,
		PerPage:      page.PerPage,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return listResponse(c, "articles", articles, meta)
}

// GetArticle handles GET /api/articles/:slug
func (s *Server) GetArticle(c *fiber.Ctx) error {
	article, err := s.articleService.GetArticle(c.UserContext(), c.Params("slug"), middleware.IdentityFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// CreateArticle handles POST /api/articles
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req struct {
		Title      string               `json:"title"`
		Slug       string               `json:"slug"`
		Excerpt    string               `json:"excerpt"`
		Content    string               `json:"content"`
		ImageURL   string               `json:"image_url"`
		Status     models.ArticleStatus `json:"status"`
		CategoryID *uint                `json:"category_id"`
		Tags       []string             `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	article, err := s.articleService.CreateArticle(c.UserContext(), service.CreateArticleInput{
		Identity:   middleware.IdentityFromCtx(c),
		Title:      req.Title,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PUT /api/articles/:slug
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	var req struct {
		Title         *string               `json:"title"`
		Slug          *string               `json:"slug"`
		Excerpt       *string               `json:"excerpt"`
		Content       *string               `json:"content"`
		ImageURL      *string               `json:"image_url"`
		Status        *models.ArticleStatus `json:"status"`
		CategoryID    *uint                 `json:"category_id"`
		ClearCategory bool                  `json:"clear_category"`
		Tags          []string              `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	article, err := s.articleService.UpdateArticle(c.UserContext(), service.UpdateArticleInput{
		Identity:   middleware.IdentityFromCtx(c),
		Slug:       c.Params("slug"),
		Title:      req.Title,
		NewSlug:    req.Slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		ClearCat:   req.ClearCategory,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:slug
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	if err := s.articleService.DeleteArticle(c.UserContext(), c.Params("slug"), middleware.IdentityFromCtx(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetRelatedArticles handles GET /api/articles/:slug/related
func (s *Server) GetRelatedArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.RelatedArticles(c.UserContext(), c.Params("slug"), middleware.IdentityFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles})
}
