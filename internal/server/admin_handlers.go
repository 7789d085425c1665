package server

import (
	"hoopsnews/internal/middleware"
	"hoopsnews/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetStats handles GET /api/admin/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.adminService.GetStats(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePagination(c)

	users, meta, err := s.userService.ListUsers(c.UserContext(), middleware.IdentityFromCtx(c), c.Query("search"), page.Page, page.PerPage)
	if err != nil {
		return respondServiceError(c, err)
	}

	return listResponse(c, "users", users, meta)
}

// ActivateUser handles POST /api/admin/users/:id/activate
func (s *Server) ActivateUser(c *fiber.Ctx) error {
	return s.setUserActive(c, true)
}

// DeactivateUser handles POST /api/admin/users/:id/deactivate
func (s *Server) DeactivateUser(c *fiber.Ctx) error {
	return s.setUserActive(c, false)
}

func (s *Server) setUserActive(c *fiber.Ctx, active bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetActive(c.UserContext(), middleware.IdentityFromCtx(c), id, active)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), middleware.IdentityFromCtx(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListArticles handles GET /api/admin/articles
func (s *Server) AdminListArticles(c *fiber.Ctx) error {
	page := parsePagination(c)

	articles, meta, err := s.articleService.ListArticles(c.UserContext(), service.ListArticlesInput{
		Identity:     middleware.IdentityFromCtx(c),
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		Author:       c.Query("author"),
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

// AdminListComments handles GET /api/admin/comments
func (s *Server) AdminListComments(c *fiber.Ctx) error {
	page := parsePagination(c)

	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v := raw == "true" || raw == "1"
		approved = &v
	}

	comments, meta, err := s.commentService.ListAll(c.UserContext(), middleware.IdentityFromCtx(c), approved, c.Query("search"), page.Page, page.PerPage)
	if err != nil {
		return respondServiceError(c, err)
	}

	return listResponse(c, "comments", comments, meta)
}

// ApproveComment handles POST /api/admin/comments/:id/approve
func (s *Server) ApproveComment(c *fiber.Ctx) error {
	return s.moderateComment(c, true)
}

// RejectComment handles POST /api/admin/comments/:id/reject
func (s *Server) RejectComment(c *fiber.Ctx) error {
	return s.moderateComment(c, false)
}

func (s *Server) moderateComment(c *fiber.Ctx, approved bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.SetApproval(c.UserContext(), id, approved, middleware.IdentityFromCtx(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
