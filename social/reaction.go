package social

import (
	"commonroom/storage/models"
	"slices"
)

type ReactionKind int

const (
	Like ReactionKind = iota
	Dislike
)

func (k ReactionKind) String() string {
	if k == Dislike {
		return "dislike"
	}
	return "like"
}

type Outcome int

const (
	// Added means the actor had no reaction before.
	Added Outcome = iota
	// Removed means the same reaction was toggled off.
	Removed
	// Switched means the opposite reaction was replaced.
	Switched
)

func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case Switched:
		return "switched"
	default:
		return "added"
	}
}

// ApplyReaction toggles the actor's reaction of the given kind. A handle ends
// up in at most one of the two sets and the counts track the set sizes.
func ApplyReaction(r *models.Reactions, handle string, kind ReactionKind) Outcome {
	same, sameCount := &r.Likes, &r.LikeCount
	opposite, oppositeCount := &r.Dislikes, &r.DislikeCount
	if kind == Dislike {
		same, sameCount, opposite, oppositeCount = opposite, oppositeCount, same, sameCount
	}

	if slices.Contains(*same, handle) {
		*same = removeHandle(*same, handle)
		*sameCount--
		return Removed
	}

	*same = append(*same, handle)
	*sameCount++
	if slices.Contains(*opposite, handle) {
		*opposite = removeHandle(*opposite, handle)
		*oppositeCount--
		return Switched
	}
	return Added
}

func removeHandle(handles []string, handle string) []string {
	return slices.DeleteFunc(handles, func(h string) bool { return h == handle })
}

// recount makes the counts equal the set sizes and reports whether they changed.
func recount(r *models.Reactions) bool {
	changed := r.LikeCount != len(r.Likes) || r.DislikeCount != len(r.Dislikes)
	r.LikeCount = len(r.Likes)
	r.DislikeCount = len(r.Dislikes)
	return changed
}
