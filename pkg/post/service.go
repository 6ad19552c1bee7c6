package post

//go:generate mockgen -source=service.go -destination=service_mock_test.go -package=post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"messenger/pkg/comment"
	"messenger/pkg/common"
	"messenger/pkg/like"
	"messenger/pkg/logger"
	"messenger/pkg/media"
	"messenger/pkg/user"
)

const (
	DefaultFeedLimit = 100
	MaxFeedLimit     = 100
	SearchLimit      = 15
)

type IPostRepo interface {
	Add(context.Context, *Post) (PostId, error)
	GetById(context.Context, PostId) (*Post, error)
	GetFeed(ctx context.Context, skip, limit int64) ([]*Post, error)
	SearchContent(ctx context.Context, keyword string, limit int64) ([]*Post, error)
	Delete(context.Context, PostId) error

	ToggleLike(context.Context, PostId, string) (like.Set, bool, error)

	PushComment(context.Context, PostId, *comment.Comment) error
	UpdateCommentText(context.Context, PostId, *comment.Comment) error
	PullComment(context.Context, PostId, comment.CommentId, time.Time) error
}

type IUserDirectory interface {
	GetByIds(context.Context, []string) (map[string]*user.User, error)
}

type IMediaUploader interface {
	Upload(context.Context, media.File) (string, error)
}

// NewPost is the input of CreatePost.
type NewPost struct {
	AuthorId string
	Content  string
	Images   []media.File
	Video    *media.File
}

type Service struct {
	Repo     IPostRepo
	Users    IUserDirectory
	Uploader IMediaUploader
	Now      func() time.Time
}

func NewService(repo IPostRepo, users IUserDirectory, uploader IMediaUploader) *Service {
	return &Service{
		Repo:     repo,
		Users:    users,
		Uploader: uploader,
		Now:      time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func validateNewPost(np NewPost) error {
	if strings.TrimSpace(np.Content) == "" && len(np.Images) == 0 && np.Video == nil {
		return fmt.Errorf("post/service: %w: a post needs text, images or a video", common.ErrValidation)
	}
	if len(np.Images) > MaxImages {
		return fmt.Errorf("post/service: %w: at most %d images are allowed", common.ErrValidation, MaxImages)
	}
	if len(np.Images) > 0 && np.Video != nil {
		return fmt.Errorf("post/service: %w: a post carries either images or a video", common.ErrValidation)
	}
	for _, f := range np.Images {
		if !f.IsImage() {
			return fmt.Errorf("post/service: %w: %q is not an image", common.ErrValidation, f.Name)
		}
	}
	if np.Video != nil && !np.Video.IsVideo() {
		return fmt.Errorf("post/service: %w: %q is not a video", common.ErrValidation, np.Video.Name)
	}
	return nil
}

// CreatePost uploads the media first and writes the post only when every
// upload succeeded.
func (s *Service) CreatePost(ctx context.Context, np NewPost) (*Post, error) {
	if err := validateNewPost(np); err != nil {
		return nil, err
	}

	images := []string{}
	if len(np.Images) > 0 {
		urls, err := media.UploadAll(ctx, s.Uploader, np.Images)
		if err != nil {
			return nil, fmt.Errorf("post/service: uploading images: %w", err)
		}
		images = urls
	}

	var video string
	if np.Video != nil {
		url, err := s.Uploader.Upload(ctx, *np.Video)
		if err != nil {
			return nil, fmt.Errorf("post/service: uploading video: %w", err)
		}
		video = url
	}

	p, err := New(np.AuthorId, np.Content, images, video, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.Add(ctx, p); err != nil {
		return nil, err
	}

	s.populate(ctx, p)
	return p, nil
}

// GetFeed returns a page of the feed, newest first. page starts at 1.
func (s *Service) GetFeed(ctx context.Context, page, limit int) ([]*Post, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	posts, err := s.Repo.GetFeed(ctx, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, err
	}
	s.populate(ctx, posts...)
	return posts, nil
}

func (s *Service) GetPostById(ctx context.Context, id PostId) (*Post, error) {
	p, err := s.Repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, p)
	return p, nil
}

// SearchPosts returns an empty result for a blank keyword instead of
// scanning the whole collection.
func (s *Service) SearchPosts(ctx context.Context, keyword string) ([]*Post, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []*Post{}, nil
	}
	posts, err := s.Repo.SearchContent(ctx, keyword, SearchLimit)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, posts...)
	return posts, nil
}

func (s *Service) ToggleLike(ctx context.Context, id PostId, userId string) (like.Set, bool, error) {
	return s.Repo.ToggleLike(ctx, id, userId)
}

func (s *Service) AddComment(ctx context.Context, id PostId, authorId, text string) (*Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("post/service: %w: comment text is required", common.ErrValidation)
	}

	p, err := s.Repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := p.AddComment(authorId, text, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.PushComment(ctx, id, c); err != nil {
		return nil, err
	}
	return s.GetPostById(ctx, id)
}

func (s *Service) EditComment(ctx context.Context, id PostId, commentId comment.CommentId, requesterId, text string) (*Post, error) {
	p, err := s.Repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := p.EditComment(commentId, requesterId, text, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateCommentText(ctx, id, c); err != nil {
		return nil, err
	}
	return s.GetPostById(ctx, id)
}

func (s *Service) DeleteComment(ctx context.Context, id PostId, commentId comment.CommentId, requesterId string) (*Post, error) {
	p, err := s.Repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.RemoveComment(commentId, requesterId); err != nil {
		return nil, err
	}
	if err := s.Repo.PullComment(ctx, id, commentId, s.now()); err != nil {
		return nil, err
	}
	return s.GetPostById(ctx, id)
}

func (s *Service) DeletePost(ctx context.Context, id PostId, requesterId string) error {
	p, err := s.Repo.GetById(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanDelete(requesterId) {
		return fmt.Errorf("post/service: %w: only the author can delete the post", common.ErrForbidden)
	}
	return s.Repo.Delete(ctx, id)
}

// populate resolves author and comment-author projections with one directory
// call. Users the directory does not know, or a failing directory, yield
// placeholder authors rather than failing the read.
func (s *Service) populate(ctx context.Context, posts ...*Post) {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, p := range posts {
		for _, id := range p.authorIds() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	users, err := s.Users.GetByIds(ctx, ids)
	if err != nil {
		logger.Log(ctx).Warnf("post/service: can't resolve authors, using placeholders: %v", err)
		users = map[string]*user.User{}
	}

	author := func(id string) *user.Author {
		if u, ok := users[id]; ok {
			return u.Author()
		}
		return user.UnknownAuthor(id)
	}
	for _, p := range posts {
		p.Author = author(p.AuthorId)
		for _, c := range p.Comments {
			c.Author = author(c.AuthorId)
		}
	}
}
