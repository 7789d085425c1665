package server

import (
	"hoopsnews/internal/middleware"
	"hoopsnews/internal/models"
	"hoopsnews/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile handles PUT /api/users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	var req struct {
		Email     *string `json:"email"`
		FullName  *string `json:"full_name"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		Identity:  identity,
		UserID:    identity.UserID,
		Email:     req.Email,
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// ChangePassword handles PUT /api/users/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	if err := s.userService.ChangePassword(c.UserContext(), middleware.IdentityFromCtx(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "password updated"})
}

// GetPublicProfile handles GET /api/users/profile/:username
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := s.userService.PublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetUserArticles handles GET /api/users/:username/articles
func (s *Server) GetUserArticles(c *fiber.Ctx) error {
	page := parsePagination(c)

	articles, meta, err := s.articleService.ListArticles(c.UserContext(), service.ListArticlesInput{
		Identity: middleware.IdentityFromCtx(c),
		Author:   c.Params("username"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
		Page:     page.Page,
		PerPage:  page.PerPage,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return listResponse(c, "articles", articles, meta)
}
