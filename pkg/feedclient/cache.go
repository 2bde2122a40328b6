package feedclient

import (
	"sync"

	"waverider/internal/models"
)

// MutationState tracks an optimistic mutation's lifecycle.
type MutationState string

const (
	StatePending    MutationState = "pending"
	StateCommitted  MutationState = "committed"
	StateRolledBack MutationState = "rolled_back"
)

// Mutation records one optimistic change. It starts Pending, then either
// commits when the server confirms or rolls the local change back when the
// call fails.
type Mutation struct {
	mu    sync.Mutex
	state MutationState
	undo  func()
}

func newMutation(undo func()) *Mutation {
	return &Mutation{state: StatePending, undo: undo}
}

// State returns the mutation's current state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutation) commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateCommitted
}

func (m *Mutation) rollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePending {
		return
	}
	if m.undo != nil {
		m.undo()
	}
	m.state = StateRolledBack
}

// Cache is an in-memory mirror of posts and comments keyed by id. All
// methods are safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	// nextTempID hands out ids for optimistic comments that have no server
	// id yet; kept far above any real id to avoid collisions.
	nextTempID uint
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		posts:      make(map[uint]models.Post),
		comments:   make(map[uint]models.Comment),
		nextTempID: 1 << 30,
	}
}

// Post returns the cached post, if present.
func (c *Cache) Post(id uint) (models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[id]
	return p, ok
}

// Comment returns the cached comment, if present.
func (c *Cache) Comment(id uint) (models.Comment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cm, ok := c.comments[id]
	return cm, ok
}

// PostComments returns every cached comment belonging to the post.
func (c *Cache) PostComments(postID uint) []models.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Comment
	for _, cm := range c.comments {
		if cm.PostID == postID {
			out = append(out, cm)
		}
	}
	return out
}

func (c *Cache) putPost(p models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[p.ID] = p
}

func (c *Cache) putComment(cm models.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments[cm.ID] = cm
}

func (c *Cache) removePost(id uint) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.posts[id]
	delete(c.posts, id)
	return p, ok
}

func (c *Cache) removeComment(id uint) (models.Comment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cm, ok := c.comments[id]
	delete(c.comments, id)
	return cm, ok
}

func (c *Cache) tempID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTempID++
	return c.nextTempID
}

// mutateComment applies fn to the cached comment and returns the prior copy
// for rollback.
func (c *Cache) mutateComment(id uint, fn func(*models.Comment)) (models.Comment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cm, ok := c.comments[id]
	if !ok {
		return models.Comment{}, false
	}
	prior := cm
	fn(&cm)
	c.comments[id] = cm
	return prior, true
}
