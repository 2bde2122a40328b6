// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"waverider/internal/models"
	"waverider/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me.
// Pointer fields distinguish "clear this field" from "leave it alone".
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Username      string                    `json:"username"`
		FirstName     *string                   `json:"first_name"`
		LastName      *string                   `json:"last_name"`
		Bio           *string                   `json:"bio"`
		Avatar        *string                   `json:"avatar"`
		Interests     []string                  `json:"interests"`
		Notifications *models.NotificationPrefs `json:"notifications"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:        userID,
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Bio:           req.Bio,
		Avatar:        req.Avatar,
		Interests:     req.Interests,
		Notifications: req.Notifications,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin (admin only)
// Admin check is enforced by AdminRequired middleware on the route.
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.userService.SetRole(ctx, targetID, models.RoleAdmin)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User promoted to admin", "user": target})
}

// AddFavorite handles POST /api/users/me/favorites/:postId
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.userService.AddFavorite(ctx, userID, postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post_id": postID})
}

// RemoveFavorite handles DELETE /api/users/me/favorites/:postId
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.userService.RemoveFavorite(ctx, userID, postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyFavorites handles GET /api/users/me/favorites
func (s *Server) GetMyFavorites(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	posts, err := s.userService.ListFavorites(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}
