package comment

import (
	"time"

	"messenger/pkg/user"
)

type CommentId string

// Comment lives inside its post's comments array and has no identity outside it.
type Comment struct {
	Id       CommentId    `json:"id" bson:"id"`
	AuthorId string       `json:"-" bson:"authorId"`
	Author   *user.Author `json:"author" bson:"-"`
	Text     string       `json:"text" bson:"text"`
	Created  time.Time    `json:"createdAt" bson:"createdAt"`
	Updated  time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// CanEdit: only the comment's author may change its text.
func CanEdit(c *Comment, requesterId string) bool {
	return requesterId != "" && c.AuthorId == requesterId
}

// CanDelete: the comment's author, or the author of the post it sits under.
func CanDelete(c *Comment, postAuthorId, requesterId string) bool {
	if requesterId == "" {
		return false
	}
	return c.AuthorId == requesterId || postAuthorId == requesterId
}
