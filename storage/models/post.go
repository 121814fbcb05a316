package models

import "time"

// Reactions holds the likes/dislikes of a post or a comment. A handle is in at
// most one of the two sets and each count equals the size of its set.
type Reactions struct {
	Likes        []string `bson:"likes" json:"likes"`
	Dislikes     []string `bson:"dislikes" json:"dislikes"`
	LikeCount    int      `bson:"likeCount" json:"likeCount"`
	DislikeCount int      `bson:"dislikeCount" json:"dislikeCount"`
}

type Comment struct {
	ID        string           `bson:"id" json:"id"`
	UserInfo  IdentitySnapshot `bson:"userInfo" json:"userInfo"`
	Body      string           `bson:"body" json:"body"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	Reactions `bson:",inline"`
}

type Post struct {
	ID           string           `bson:"_id" json:"id"`
	UserInfo     IdentitySnapshot `bson:"userInfo" json:"userInfo"`
	Body         string           `bson:"body" json:"body"`
	ImageURL     string           `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	CreatedAt    time.Time        `bson:"createdAt" json:"createdAt"`
	Comments     []Comment        `bson:"comments" json:"comments"`
	CommentCount int              `bson:"commentCount" json:"commentCount"`
	Reactions    `bson:",inline"`
}

// CommentIndex returns the position of the comment with the given id or -1.
func (p *Post) CommentIndex(id string) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

func (r Reactions) clone() Reactions {
	c := r
	c.Likes = cloneStrings(r.Likes)
	c.Dislikes = cloneStrings(r.Dislikes)
	return c
}

func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Reactions = p.Reactions.clone()
	if p.Comments != nil {
		c.Comments = make([]Comment, len(p.Comments))
		for i, comment := range p.Comments {
			comment.Reactions = comment.Reactions.clone()
			c.Comments[i] = comment
		}
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
