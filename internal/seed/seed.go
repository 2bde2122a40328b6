// Package seed populates a database with development data: users, posts,
// comment threads, likes, and favorites.
package seed

import (
	"fmt"
	"log/slog"

	"waverider/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls the shape of a seeding run.
type Options struct {
	NumUsers           int
	PostsPerUser       int
	MaxCommentsPerPost int
	RNGSeed            int64
	// Clean drops previously seeded rows before inserting.
	Clean bool
}

// DefaultOptions returns a run sized for local development.
func DefaultOptions() Options {
	return Options{NumUsers: 12, PostsPerUser: 4, MaxCommentsPerPost: 6}
}

// adminEmail doubles as the idempotency marker: a second run without Clean
// finds it and stops instead of duplicating the dataset.
const adminEmail = "admin@waverider.local"

// Run seeds the database. It is idempotent unless opts.Clean is set.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts = DefaultOptions()
	}

	if opts.Clean {
		if err := clean(db); err != nil {
			return err
		}
	}

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&existing).Error; err != nil {
		return fmt.Errorf("seed precheck: %w", err)
	}
	if existing > 0 {
		slog.Info("database already seeded, skipping", "marker", adminEmail)
		return nil
	}

	f := NewFactory(db, opts.RNGSeed)

	admin, err := createAdmin(db)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	users = append(users, admin)
	for i := 1; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			p, err := f.CreatePost(u, 90)
			if err != nil {
				return err
			}
			posts = append(posts, p)
		}
	}

	if err := seedSocialMesh(f, users, posts, opts.MaxCommentsPerPost); err != nil {
		return err
	}

	slog.Info("seeding complete",
		"users", len(users),
		"posts", len(posts))
	return nil
}

// seedSocialMesh layers comments, replies, likes, and favorites over the
// seeded posts so feeds and threads look lived-in.
func seedSocialMesh(f *Factory, users []*models.User, posts []*models.Post, maxComments int) error {
	if maxComments <= 0 {
		maxComments = 6
	}
	for _, p := range posts {
		var roots []*models.Comment
		n := f.rng.Intn(maxComments + 1)
		for i := 0; i < n; i++ {
			author := users[f.rng.Intn(len(users))]
			var parent *models.Comment
			// Roughly a third of comments become replies once roots exist.
			if len(roots) > 0 && f.rng.Intn(3) == 0 {
				parent = roots[f.rng.Intn(len(roots))]
			}
			c, err := f.CreateComment(author, p, parent)
			if err != nil {
				return err
			}
			if parent == nil {
				roots = append(roots, c)
			}
			for _, liker := range users {
				if f.rng.Intn(5) == 0 {
					if err := f.LikeComment(liker, c); err != nil {
						return err
					}
				}
			}
		}
		for _, fan := range users {
			if fan.ID != p.UserID && f.rng.Intn(4) == 0 {
				if err := f.FavoritePost(fan, p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func createAdmin(db *gorm.DB) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("WaveRider-Admin-1!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("seed admin password: %w", err)
	}
	admin := &models.User{
		Username: "waverider-admin",
		Email:    adminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
		Bio:      "Keeper of the lineup.",
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return admin, nil
}

func clean(db *gorm.DB) error {
	// Children first so foreign keys stay satisfied.
	for _, m := range []interface{}{
		&models.CommentLike{}, &models.Favorite{}, &models.Comment{},
		&models.Image{}, &models.Post{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("seed clean: %w", err)
		}
	}
	return nil
}
