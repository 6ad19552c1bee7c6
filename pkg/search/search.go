package search

//go:generate mockgen -source=search.go -destination=search_mock_test.go -package=search

import (
	"context"
	"fmt"
	"strings"

	"messenger/pkg/common"
	"messenger/pkg/post"
	"messenger/pkg/user"
)

const (
	TypeUsers = "users"
	TypePosts = "posts"

	UserLimit = 15
)

type (
	IUserSearcher interface {
		Search(context.Context, user.Filter) ([]*user.User, error)
	}
	IPostSearcher interface {
		SearchPosts(ctx context.Context, keyword string) ([]*post.Post, error)
	}
)

// Query is a search request. Location, NativeLanguage and Interests only
// narrow user searches.
type Query struct {
	Keyword        string
	Type           string
	Location       string
	NativeLanguage string
	Interests      []string
}

type Service struct {
	Users IUserSearcher
	Posts IPostSearcher
}

func NewService(users IUserSearcher, posts IPostSearcher) *Service {
	return &Service{
		Users: users,
		Posts: posts,
	}
}

// Search returns []*user.User for TypeUsers and []*post.Post for TypePosts.
func (s *Service) Search(ctx context.Context, requesterId string, q Query) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(q.Type)) {
	case TypeUsers:
		return s.searchUsers(ctx, requesterId, q)
	case TypePosts:
		return s.Posts.SearchPosts(ctx, q.Keyword)
	}
	return nil, fmt.Errorf("search: %w: type must be %q or %q", common.ErrValidation, TypeUsers, TypePosts)
}

func (s *Service) searchUsers(ctx context.Context, requesterId string, q Query) ([]*user.User, error) {
	interests := []string{}
	for _, i := range q.Interests {
		if i = strings.TrimSpace(i); i != "" {
			interests = append(interests, i)
		}
	}

	users, err := s.Users.Search(ctx, user.Filter{
		Keyword:        strings.TrimSpace(q.Keyword),
		ExcludeId:      requesterId,
		Location:       strings.TrimSpace(q.Location),
		NativeLanguage: strings.TrimSpace(q.NativeLanguage),
		Interests:      interests,
		Limit:          UserLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", common.ErrPersistence, err)
	}
	return users, nil
}
