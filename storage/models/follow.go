package models

// IdentitySnapshot is the copy of a user's public profile embedded into posts,
// comments and follow edges. It is refreshed lazily, never on profile edit.
type IdentitySnapshot struct {
	UserID          string `bson:"userId" json:"userId"`
	Name            string `bson:"name" json:"name"`
	Username        string `bson:"username" json:"username"`
	HouseName       string `bson:"houseName" json:"houseName"`
	ProfileImageURL string `bson:"profileImageURL" json:"profileImageURL"`
	Bio             string `bson:"bio,omitempty" json:"bio,omitempty"`
}

// FollowEdge is one entry of a user's following or followers list.
type FollowEdge struct {
	IdentitySnapshot `bson:",inline"`
}

func NewFollowEdge(u *User) FollowEdge {
	return FollowEdge{IdentitySnapshot: u.Snapshot()}
}

// AuthorInfo is the part of the snapshot embedded in posts and comments.
func (s IdentitySnapshot) AuthorInfo() IdentitySnapshot {
	s.Bio = ""
	return s
}
