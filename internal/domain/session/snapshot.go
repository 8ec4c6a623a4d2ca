package session

import (
	"github.com/alchemorsel/recipebook/internal/domain/user"
)

// Snapshot is a point-in-time copy of the session. Consumers receive
// snapshots and never a handle on the store's own state.
type Snapshot struct {
	UserID          user.ID
	AuthToken       string
	Info            *user.Info
	IsAuthenticated bool
	Likes           LikedSet
}

// Anonymous returns the logged-out snapshot
func Anonymous() Snapshot {
	return Snapshot{Likes: NewLikedSet()}
}

// Authenticated builds the snapshot for a signed-in user
func Authenticated(info user.Info, token string, likes LikedSet) Snapshot {
	infoCopy := info
	return Snapshot{
		UserID:          info.IDUser,
		AuthToken:       token,
		Info:            &infoCopy,
		IsAuthenticated: true,
		Likes:           likes,
	}
}

// WithLikes returns a copy of the snapshot carrying likes
func (s Snapshot) WithLikes(likes LikedSet) Snapshot {
	s.Likes = likes
	return s
}

// LikeCount returns the number of liked recipes, the recommendation
// eligibility signal
func (s Snapshot) LikeCount() int {
	return s.Likes.Len()
}
