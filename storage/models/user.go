package models

import "time"

type User struct {
	ID              string       `bson:"_id" json:"id"`
	Name            string       `bson:"name" json:"name"`
	Username        string       `bson:"username" json:"username"`
	Password        string       `bson:"password" json:"password,omitempty"`
	Email           string       `bson:"email" json:"email"`
	HouseName       string       `bson:"houseName" json:"houseName"`
	Bio             string       `bson:"bio" json:"bio"`
	ProfileImageURL string       `bson:"profileImageURL" json:"profileImageURL"`
	Location        string       `bson:"location" json:"location"`
	BannerURL       string       `bson:"bannerURL" json:"bannerURL"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	Following       []FollowEdge `bson:"following" json:"following"`
	Followers       []FollowEdge `bson:"followers" json:"followers"`
	FollowerCount   int          `bson:"followerCount" json:"followerCount"`
	FollowingCount  int          `bson:"followingCount" json:"followingCount"`
}

// Snapshot copies the public identity of the user as it is right now.
func (u *User) Snapshot() IdentitySnapshot {
	return IdentitySnapshot{
		UserID:          u.ID,
		Name:            u.Name,
		Username:        u.Username,
		HouseName:       u.HouseName,
		ProfileImageURL: u.ProfileImageURL,
		Bio:             u.Bio,
	}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Following = cloneEdges(u.Following)
	c.Followers = cloneEdges(u.Followers)
	return &c
}

func cloneEdges(edges []FollowEdge) []FollowEdge {
	if edges == nil {
		return nil
	}
	return append(make([]FollowEdge, 0, len(edges)), edges...)
}
