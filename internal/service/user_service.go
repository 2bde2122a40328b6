package service

import (
	"context"
	"strings"

	"waverider/internal/models"
	"waverider/internal/repository"
	"waverider/internal/sanitize"
	"waverider/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

type UpdateProfileInput struct {
	UserID        uint
	Username      string
	FirstName     *string
	LastName      *string
	Bio           *string
	Avatar        *string
	Interests     []string
	Notifications *models.NotificationPrefs
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxNameLen = 50
	const maxInterests = 20

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.FirstName != nil {
		if len(*in.FirstName) > maxNameLen {
			return nil, models.NewValidationError("First name too long (max 50 characters)")
		}
		user.FirstName = sanitize.Plain(*in.FirstName)
	}
	if in.LastName != nil {
		if len(*in.LastName) > maxNameLen {
			return nil, models.NewValidationError("Last name too long (max 50 characters)")
		}
		user.LastName = sanitize.Plain(*in.LastName)
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = sanitize.Plain(*in.Bio)
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Interests != nil {
		if len(in.Interests) > maxInterests {
			return nil, models.NewValidationError("Too many interests (max 20)")
		}
		cleaned := make([]string, 0, len(in.Interests))
		for _, raw := range in.Interests {
			v := strings.TrimSpace(sanitize.Plain(raw))
			if v != "" {
				cleaned = append(cleaned, v)
			}
		}
		user.Interests = cleaned
	}
	if in.Notifications != nil {
		user.Notifications = *in.Notifications
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role; the admin check on the caller happens at
// the route layer.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role string) (*models.User, error) {
	if role != models.RoleAuthenticated && role != models.RoleAdmin {
		return nil, models.NewValidationError("Unknown role")
	}
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddFavorite marks a post as a favorite of the user. Repeats are no-ops.
func (s *UserService) AddFavorite(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return err
	}
	return s.userRepo.AddFavorite(ctx, userID, postID)
}

func (s *UserService) RemoveFavorite(ctx context.Context, userID, postID uint) error {
	return s.userRepo.RemoveFavorite(ctx, userID, postID)
}

// ListFavorites returns the user's favorite posts, most recent feed order.
func (s *UserService) ListFavorites(ctx context.Context, userID uint) ([]*models.Post, error) {
	ids, err := s.userRepo.ListFavoriteIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	posts, err := s.postRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}
