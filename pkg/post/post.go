package post

import (
	"fmt"
	"strings"
	"time"

	"messenger/pkg/comment"
	"messenger/pkg/common"
	"messenger/pkg/like"
	"messenger/pkg/user"
)

const MaxImages = 5

type PostId string

// Post is the aggregate root: comments and likes change only through it.
type Post struct {
	Id       PostId             `json:"id" bson:"id"`
	AuthorId string             `json:"-" bson:"authorId"`
	Author   *user.Author       `json:"author" bson:"-"`
	Content  string             `json:"content" bson:"content"`
	Images   []string           `json:"images" bson:"images"`
	Video    string             `json:"video" bson:"video"`
	Likes    like.Set           `json:"likes" bson:"likes"`
	Comments []*comment.Comment `json:"comments" bson:"comments"`
	Created  time.Time          `json:"createdAt" bson:"createdAt"`
	Updated  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// New builds a post that satisfies the content/media invariant.
func New(authorId, content string, images []string, video string, now time.Time) (*Post, error) {
	p := &Post{
		Id:       PostId(common.RandStringRunes(12)),
		AuthorId: authorId,
		Content:  strings.TrimSpace(content),
		Images:   images,
		Video:    video,
		Created:  now,
		Updated:  now,
	}
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) HasMedia() bool {
	return len(p.Images) > 0 || p.Video != ""
}

func (p *Post) validate() error {
	if p.AuthorId == "" {
		return fmt.Errorf("post: %w: author is required", common.ErrValidation)
	}
	if p.Content == "" && !p.HasMedia() {
		return fmt.Errorf("post: %w: a post needs text, images or a video", common.ErrValidation)
	}
	if len(p.Images) > MaxImages {
		return fmt.Errorf("post: %w: at most %d images are allowed", common.ErrValidation, MaxImages)
	}
	if len(p.Images) > 0 && p.Video != "" {
		return fmt.Errorf("post: %w: a post carries either images or a video", common.ErrValidation)
	}
	return nil
}

// normalize replaces nil slices so documents always serialize as [] and
// drops duplicate likes written by older clients.
func (p *Post) normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Likes = p.Likes.Normalize()
	if p.Comments == nil {
		p.Comments = []*comment.Comment{}
	}
}

func (p *Post) CanDelete(requesterId string) bool {
	return requesterId != "" && p.AuthorId == requesterId
}

func (p *Post) findComment(id comment.CommentId) (int, *comment.Comment) {
	for idx, c := range p.Comments {
		if c.Id == id {
			return idx, c
		}
	}
	return -1, nil
}

// AddComment appends a comment with an id unique within this post.
func (p *Post) AddComment(authorId, text string, now time.Time) (*comment.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("post: %w: comment text is required", common.ErrValidation)
	}

	id := comment.CommentId(common.RandStringRunes(12))
	for _, c := p.findComment(id); c != nil; _, c = p.findComment(id) {
		id = comment.CommentId(common.RandStringRunes(12))
	}

	c := &comment.Comment{
		Id:       id,
		AuthorId: authorId,
		Text:     text,
		Created:  now,
		Updated:  now,
	}
	p.Comments = append(p.Comments, c)
	p.Updated = now
	return c, nil
}

// EditComment rewrites the text in place; the comment keeps its position.
func (p *Post) EditComment(id comment.CommentId, requesterId, text string, now time.Time) (*comment.Comment, error) {
	_, c := p.findComment(id)
	if c == nil {
		return nil, fmt.Errorf("post: comment %s: %w", id, common.ErrNotFound)
	}
	if !comment.CanEdit(c, requesterId) {
		return nil, fmt.Errorf("post: %w: only the author can edit the comment", common.ErrForbidden)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("post: %w: comment text is required", common.ErrValidation)
	}

	c.Text = text
	c.Updated = now
	p.Updated = now
	return c, nil
}

// RemoveComment deletes the comment for its author or the post's author.
func (p *Post) RemoveComment(id comment.CommentId, requesterId string) (*comment.Comment, error) {
	idx, c := p.findComment(id)
	if c == nil {
		return nil, fmt.Errorf("post: comment %s: %w", id, common.ErrNotFound)
	}
	if !comment.CanDelete(c, p.AuthorId, requesterId) {
		return nil, fmt.Errorf("post: %w: only the comment or post author can delete the comment", common.ErrForbidden)
	}

	p.Comments = append(p.Comments[:idx], p.Comments[idx+1:]...)
	return c, nil
}

// authorIds lists every user referenced by the post, for projection lookups.
func (p *Post) authorIds() []string {
	ids := []string{p.AuthorId}
	for _, c := range p.Comments {
		ids = append(ids, c.AuthorId)
	}
	return ids
}
