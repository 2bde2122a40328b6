package service

import (
	"waverider/internal/models"
)

// ThreadNode is a comment plus its direct replies, oldest first.
type ThreadNode struct {
	*models.Comment
	Replies []*ThreadNode `json:"replies"`
}

// BuildThread assembles a flat comment list into a forest in a single pass
// over the input. Input order is preserved within each reply list, so a
// created_at ASC list yields oldest-first threads.
//
// Comments whose parent is missing from the input are promoted to roots
// rather than dropped; a corrupted parent chain that loops is broken at the
// first repeated node so traversal always terminates.
func BuildThread(comments []*models.Comment) []*ThreadNode {
	if len(comments) == 0 {
		return []*ThreadNode{}
	}

	nodes := make(map[uint]*ThreadNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &ThreadNode{Comment: c}
	}

	// One shared state map makes the whole build linear: every node's
	// parent chain is walked at most once, then memoized.
	state := make(map[uint]chainState, len(comments))

	var roots []*ThreadNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentCommentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentCommentID]
		if !ok || parent == node || resolveChain(nodes, state, c.ID) == chainCyclic {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	if roots == nil {
		roots = []*ThreadNode{}
	}
	return roots
}

type chainState uint8

const (
	chainVisiting chainState = iota + 1
	chainSound
	chainCyclic
)

// resolveChain walks id's parent chain until it reaches a root, a missing
// parent, or a node with a known verdict, then marks every node on the
// path with the result. Valid data never cycles; this guards traversal
// against corrupted parent links.
func resolveChain(nodes map[uint]*ThreadNode, state map[uint]chainState, id uint) chainState {
	var path []uint
	verdict := chainSound
	cur := id
	for {
		switch state[cur] {
		case chainVisiting:
			verdict = chainCyclic
		case chainSound, chainCyclic:
			verdict = state[cur]
		default:
			state[cur] = chainVisiting
			path = append(path, cur)
			node := nodes[cur]
			if node.ParentCommentID != nil {
				if _, ok := nodes[*node.ParentCommentID]; ok {
					cur = *node.ParentCommentID
					continue
				}
			}
		}
		break
	}
	for _, n := range path {
		state[n] = verdict
	}
	return verdict
}

// FlattenToDepth prunes a forest to maxDepth levels; replies below the
// limit are cut, not promoted. Depth 1 keeps only roots. Non-positive depth
// means unlimited.
func FlattenToDepth(roots []*ThreadNode, maxDepth int) []*ThreadNode {
	if maxDepth <= 0 {
		return roots
	}
	out := make([]*ThreadNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, pruneNode(r, maxDepth))
	}
	return out
}

func pruneNode(n *ThreadNode, depthLeft int) *ThreadNode {
	copied := &ThreadNode{Comment: n.Comment}
	if depthLeft <= 1 {
		return copied
	}
	for _, child := range n.Replies {
		copied.Replies = append(copied.Replies, pruneNode(child, depthLeft-1))
	}
	return copied
}
