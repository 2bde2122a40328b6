package seed

import (
	"fmt"
	"math/rand"
	"time"

	"waverider/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds and persists domain entities with fake but plausible data.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	fake *gofakeit.Faker
}

// NewFactory creates a Factory bound to the given database. The rngSeed makes
// a run reproducible; pass 0 to derive one from the clock.
func NewFactory(db *gorm.DB, rngSeed int64) *Factory {
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(rngSeed)),
		fake: gofakeit.New(rngSeed),
	}
}

// seedPasswordHash is shared by every generated user so seeding stays fast;
// bcrypt at default cost per user dominates runtime otherwise.
var seedPasswordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("WaveRider-Dev-1!"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser persists a user with generated profile data. Overrides run
// before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := f.fake.Username()
	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@%s", username, f.fake.DomainName()),
		Password:  seedPasswordHash,
		Role:      models.RoleAuthenticated,
		FirstName: f.fake.FirstName(),
		LastName:  f.fake.LastName(),
		Bio:       f.fake.Sentence(12),
		Interests: f.interests(),
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}
	return user, nil
}

// CreatePost persists a post authored by user, with created_at spread over
// the past maxAgeDays so cursor pagination has something to page through.
func (f *Factory) CreatePost(user *models.User, maxAgeDays int, overrides ...func(*models.Post)) (*models.Post, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = 90
	}
	age := time.Duration(f.rng.Int63n(int64(maxAgeDays) * int64(24*time.Hour)))
	post := &models.Post{
		Title:             f.fake.Sentence(f.rng.Intn(5) + 3),
		Description:       f.fake.Paragraph(1, 3, 8, " "),
		Category:          categories[f.rng.Intn(len(categories))],
		AdditionalContent: f.maybeParagraph(),
		UserID:            user.ID,
		AuthorUsername:    user.Username,
		CreatedAt:         time.Now().UTC().Add(-age),
	}
	for _, o := range overrides {
		o(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("seed post: %w", err)
	}
	return post, nil
}

// CreateComment persists a comment on post. Pass a parent to build a reply.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content:        f.fake.Sentence(f.rng.Intn(12) + 3),
		UserID:         user.ID,
		PostID:         post.ID,
		AuthorUsername: user.Username,
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("seed comment: %w", err)
	}
	return comment, nil
}

// LikeComment records user's like on comment, ignoring duplicates.
func (f *Factory) LikeComment(user *models.User, comment *models.Comment) error {
	like := &models.CommentLike{UserID: user.ID, CommentID: comment.ID}
	err := f.db.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).
		FirstOrCreate(like).Error
	if err != nil {
		return fmt.Errorf("seed comment like: %w", err)
	}
	return nil
}

// FavoritePost records user's favorite of post, ignoring duplicates.
func (f *Factory) FavoritePost(user *models.User, post *models.Post) error {
	fav := &models.Favorite{UserID: user.ID, PostID: post.ID}
	err := f.db.Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		FirstOrCreate(fav).Error
	if err != nil {
		return fmt.Errorf("seed favorite: %w", err)
	}
	return nil
}

var categories = []string{
	"Surf Reports", "Forecasting", "Gear", "Travel", "Technique",
	"Wave Science", "Board Design", "Community",
}

var interestPool = []string{
	"surfing", "forecasting", "shaping", "photography", "freediving",
	"weather", "travel", "longboarding", "big waves",
}

func (f *Factory) interests() []string {
	n := f.rng.Intn(4)
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(interestPool))[:n] {
		picked = append(picked, interestPool[i])
	}
	return picked
}

func (f *Factory) maybeParagraph() string {
	if f.rng.Intn(2) == 0 {
		return ""
	}
	return f.fake.Paragraph(1, 2, 10, " ")
}
