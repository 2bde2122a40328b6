package service

import (
	"testing"

	"waverider/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uint) *uint { return &id }

func countNodes(roots []*ThreadNode) int {
	n := 0
	for _, r := range roots {
		n += 1 + countNodes(r.Replies)
	}
	return n
}

func TestBuildThread_ConservesComments(t *testing.T) {
	t.Parallel()

	comments := []*models.Comment{
		{ID: 1},
		{ID: 2, ParentCommentID: ptr(1)},
		{ID: 3, ParentCommentID: ptr(1)},
		{ID: 4, ParentCommentID: ptr(2)},
		{ID: 5},
		{ID: 6, ParentCommentID: ptr(5)},
	}

	roots := BuildThread(comments)
	require.Len(t, roots, 2)
	assert.Equal(t, len(comments), countNodes(roots), "every comment lands in exactly one bucket")

	assert.Equal(t, uint(1), roots[0].ID)
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, uint(2), roots[0].Replies[0].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, uint(4), roots[0].Replies[0].Replies[0].ID)
}

func TestBuildThread_MissingParentPromotesToRoot(t *testing.T) {
	t.Parallel()

	comments := []*models.Comment{
		{ID: 2, ParentCommentID: ptr(99)},
		{ID: 3},
	}

	roots := BuildThread(comments)
	require.Len(t, roots, 2)
	assert.Equal(t, len(comments), countNodes(roots))
}

func TestBuildThread_CycleTerminates(t *testing.T) {
	t.Parallel()

	// Corrupted data: 1 and 2 are each other's parents.
	comments := []*models.Comment{
		{ID: 1, ParentCommentID: ptr(2)},
		{ID: 2, ParentCommentID: ptr(1)},
		{ID: 3},
	}

	roots := BuildThread(comments)
	assert.Equal(t, len(comments), countNodes(roots), "cycle members surface as roots instead of vanishing")
}

func TestBuildThread_SelfParentTerminates(t *testing.T) {
	t.Parallel()

	comments := []*models.Comment{{ID: 1, ParentCommentID: ptr(1)}}
	roots := BuildThread(comments)
	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Replies)
}

func TestBuildThread_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, BuildThread(nil))
}

func TestFlattenToDepth(t *testing.T) {
	t.Parallel()

	comments := []*models.Comment{
		{ID: 1},
		{ID: 2, ParentCommentID: ptr(1)},
		{ID: 3, ParentCommentID: ptr(2)},
	}
	roots := BuildThread(comments)

	pruned := FlattenToDepth(roots, 2)
	require.Len(t, pruned, 1)
	require.Len(t, pruned[0].Replies, 1)
	assert.Empty(t, pruned[0].Replies[0].Replies, "depth 2 cuts the third level")

	unlimited := FlattenToDepth(roots, 0)
	assert.Equal(t, 3, countNodes(unlimited))
}

func TestBuildThread_DeepChain(t *testing.T) {
	t.Parallel()

	// A single maximally deep chain: node i's parent is i-1.
	const depth = 20000
	comments := make([]*models.Comment, 0, depth)
	comments = append(comments, &models.Comment{ID: 1})
	for i := uint(2); i <= depth; i++ {
		comments = append(comments, &models.Comment{ID: i, ParentCommentID: ptr(i - 1)})
	}

	roots := BuildThread(comments)
	require.Len(t, roots, 1)
	assert.Equal(t, depth, countNodes(roots))

	// Walk down and confirm the chain is intact.
	cur := roots[0]
	for cur.Replies != nil {
		require.Len(t, cur.Replies, 1)
		cur = cur.Replies[0]
	}
	assert.Equal(t, uint(depth), cur.ID)
}

func TestBuildThread_CycleDescendantsPromoted(t *testing.T) {
	t.Parallel()

	// 1 and 2 loop; 3 hangs off the loop, 4 is a clean root with a reply.
	comments := []*models.Comment{
		{ID: 1, ParentCommentID: ptr(2)},
		{ID: 2, ParentCommentID: ptr(1)},
		{ID: 3, ParentCommentID: ptr(2)},
		{ID: 4},
		{ID: 5, ParentCommentID: ptr(4)},
	}

	roots := BuildThread(comments)
	assert.Equal(t, len(comments), countNodes(roots), "nothing vanishes")

	rootIDs := make([]uint, 0, len(roots))
	for _, r := range roots {
		rootIDs = append(rootIDs, r.ID)
	}
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, rootIDs,
		"loop members and their descendants surface as roots; the sound thread stays attached")
}
