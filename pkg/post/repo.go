package post

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"messenger/pkg/comment"
	"messenger/pkg/common"
	"messenger/pkg/like"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type Repo struct {
	posts IMongoCollection
}

func NewPostRepo(postsCol *mongo.Collection) *Repo {
	posts := &MongoCollection{
		Coll: postsCol,
	}
	return &Repo{
		posts: posts,
	}
}

// EnsureIndexes creates the unique id index and the feed sort index.
func EnsureIndexes(ctx context.Context, postsCol *mongo.Collection) error {
	_, err := postsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: newestFirst},
	})
	if err != nil {
		return fmt.Errorf("post/repo: failed creating indexes: %w", err)
	}
	return nil
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("post/repo: %s: %w: %w", op, common.ErrPersistence, err)
}

func (r *Repo) Add(ctx context.Context, p *Post) (PostId, error) {
	_, err := r.posts.InsertOne(ctx, p)
	if err != nil {
		return PostId(``), persistenceErr("failed inserting a post", err)
	}
	return p.Id, nil
}

func (r *Repo) Delete(ctx context.Context, id PostId) error {
	_, err := r.posts.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return persistenceErr("failed deleting post", err)
	}
	return nil
}

func (r *Repo) GetById(ctx context.Context, id PostId) (*Post, error) {
	post := new(Post)
	err := r.posts.FindOne(ctx, bson.M{"id": id}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("post/repo: post %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, persistenceErr("failed loading post", err)
	}
	post.normalize()
	return post, nil
}

// GetFeed returns one page of posts, newest first.
func (r *Repo) GetFeed(ctx context.Context, skip, limit int64) ([]*Post, error) {
	opts := options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// SearchContent matches the keyword literally and case-insensitively.
func (r *Repo) SearchContent(ctx context.Context, keyword string, limit int64) ([]*Post, error) {
	filter := bson.M{"content": bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}}
	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *Repo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*Post, error) {
	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, persistenceErr("failed finding posts", err)
	}
	defer cursor.Close(ctx)

	posts := []*Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, persistenceErr("failed getting posts from cursor", err)
	}
	for _, p := range posts {
		p.normalize()
	}
	return posts, nil
}

// ToggleLike flips the user's membership in one atomic pipeline update, so
// concurrent toggles by different users never overwrite each other.
func (r *Repo) ToggleLike(ctx context.Context, id PostId, userId string) (like.Set, bool, error) {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userId, current}}},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: current},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userId}}}},
				}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{userId}}}},
			}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	res := struct {
		Likes like.Set `bson:"likes"`
	}{}
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("post/repo: post %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, false, persistenceErr("failed toggling like", err)
	}

	likes := res.Likes.Normalize()
	return likes, likes.Contains(userId), nil
}

func (r *Repo) PushComment(ctx context.Context, id PostId, c *comment.Comment) error {
	filter := bson.D{{Key: "id", Value: id}}
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "comments", Value: c}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: c.Created}}},
	}
	if _, err := r.posts.UpdateOne(ctx, filter, update); err != nil {
		return persistenceErr("failed adding comment", err)
	}
	return nil
}

// UpdateCommentText rewrites one array element in place, so the comment
// keeps its position in the list.
func (r *Repo) UpdateCommentText(ctx context.Context, id PostId, c *comment.Comment) error {
	filter := bson.D{{Key: "id", Value: id}, {Key: "comments.id", Value: c.Id}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "comments.$.text", Value: c.Text},
		{Key: "comments.$.updatedAt", Value: c.Updated},
		{Key: "updatedAt", Value: c.Updated},
	}}}
	if _, err := r.posts.UpdateOne(ctx, filter, update); err != nil {
		return persistenceErr("failed updating comment", err)
	}
	return nil
}

func (r *Repo) PullComment(ctx context.Context, id PostId, commentId comment.CommentId, now time.Time) error {
	filter := bson.D{{Key: "id", Value: id}}
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "comments", Value: bson.D{{Key: "id", Value: commentId}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}
	if _, err := r.posts.UpdateOne(ctx, filter, update); err != nil {
		return persistenceErr("failed removing comment", err)
	}
	return nil
}
