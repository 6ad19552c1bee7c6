package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	. "messenger/pkg/common"
	"messenger/pkg/logger"
	"messenger/pkg/post"
	"messenger/pkg/user"
)

var (
	f             = faker.New()
	onePassForAll = HashPass("sdfsdfsdf", RandStringRunes(8)) // salt must have len of 8
	languages     = []string{"English", "Spanish", "French", "German", "Japanese", "Russian"}
)

type (
	IUserRepo interface {
		Add(context.Context, *user.User) (string, error)
		GetAll(context.Context) ([]*user.User, error)
	}
	IPostStore interface {
		Add(context.Context, *post.Post) (post.PostId, error)
	}
	ITokenIssuer interface {
		CreateToken(*user.User) (string, error)
	}
)

// seed adds users when the table is empty, a batch of posts with comments
// and likes, and returns a token for the first user.
func seed(ctx context.Context, userRepo IUserRepo, postRepo IPostStore, tokens ITokenIssuer) (string, error) {
	authors, err := userRepo.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("seed: can't get all authors: %w", err)
	}

	if len(authors) == 0 {
		if err := createAuthors(ctx, userRepo); err != nil {
			return "", err
		}
		if authors, err = userRepo.GetAll(ctx); err != nil {
			return "", fmt.Errorf("seed: can't get all authors: %w", err)
		}
	}
	if len(authors) == 0 {
		return "", fmt.Errorf("seed: no authors to write posts")
	}

	for i := 0; i <= 10; i++ {
		p, err := genPost(authors)
		if err != nil {
			return "", err
		}
		if _, err := postRepo.Add(ctx, p); err != nil {
			return "", fmt.Errorf("seed: can't add post: %w", err)
		}
	}
	logger.Log(ctx).Infof("seed: %d authors, 11 posts", len(authors))

	return tokens.CreateToken(authors[0])
}

func createAuthors(ctx context.Context, userRepo IUserRepo) error {
	// User for experiments (not random)
	_, err := userRepo.Add(ctx, &user.User{
		FullName:       "Rob Pike",
		Email:          "pike@example.com",
		Password:       onePassForAll,
		NativeLanguage: "English",
		Location:       "Sydney",
		Interests:      []string{"go", "plan9"},
	})
	if err != nil {
		return fmt.Errorf("seed: can't create default user: %w", err)
	}
	for i := 1; i <= 5; i++ {
		if _, err := userRepo.Add(ctx, genUser()); err != nil {
			return fmt.Errorf("seed: can't add user: %w", err)
		}
	}
	return nil
}

func genUser() *user.User {
	return &user.User{
		FullName:         f.Person().Name(),
		Email:            strings.ToLower(f.Internet().Email()),
		Password:         onePassForAll,
		Bio:              f.Lorem().Sentence(8),
		NativeLanguage:   randItem(languages),
		LearningLanguage: randItem(languages),
		Location:         f.Address().City(),
		Interests:        f.Lorem().Words(rand.Intn(3) + 1),
	}
}

func genText() string {
	return f.Lorem().Paragraph(rand.Intn(3) + 2)
}

// genPost goes through the aggregate so seeded posts obey the same rules as
// real ones.
func genPost(users []*user.User) (*post.Post, error) {
	created := f.Time().Time(time.Now()).UTC()
	p, err := post.New(randUser(users).Id, genText(), nil, "", created)
	if err != nil {
		return nil, fmt.Errorf("seed: can't build post: %w", err)
	}

	for i := rand.Intn(5); i > 0; i-- {
		commented := created.Add(time.Duration(rand.Intn(3600)) * time.Second)
		if _, err := p.AddComment(randUser(users).Id, f.Lorem().Sentence(rand.Intn(10)+3), commented); err != nil {
			return nil, fmt.Errorf("seed: can't add comment: %w", err)
		}
	}
	for _, u := range users {
		if rand.Intn(2) == 0 {
			p.Likes.Toggle(u.Id)
		}
	}
	return p, nil
}

func randItem(items []string) string {
	return items[rand.Intn(len(items))]
}

func randUser(users []*user.User) *user.User {
	return users[rand.Intn(len(users))]
}
