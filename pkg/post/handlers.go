package post

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"messenger/pkg/comment"
	. "messenger/pkg/common"
	"messenger/pkg/like"
	"messenger/pkg/logger"
	"messenger/pkg/media"
	"messenger/pkg/sessions"
)

const (
	maxUploadMemory = 32 << 20
	maxFileSize     = 100 << 20
)

type IPostService interface {
	CreatePost(context.Context, NewPost) (*Post, error)
	GetFeed(ctx context.Context, page, limit int) ([]*Post, error)
	GetPostById(context.Context, PostId) (*Post, error)
	ToggleLike(context.Context, PostId, string) (like.Set, bool, error)
	AddComment(ctx context.Context, id PostId, authorId, text string) (*Post, error)
	EditComment(ctx context.Context, id PostId, commentId comment.CommentId, requesterId, text string) (*Post, error)
	DeleteComment(ctx context.Context, id PostId, commentId comment.CommentId, requesterId string) (*Post, error)
	DeletePost(ctx context.Context, id PostId, requesterId string) error
}

type PostHandler struct {
	Posts IPostService
}

func NewPostHandler(posts IPostService) *PostHandler {
	return &PostHandler{
		Posts: posts,
	}
}

type commentBody struct {
	Text string `json:"text"`
}

type likeResp struct {
	Message string   `json:"message"`
	Likes   like.Set `json:"likes"`
}

// requester writes 401 and returns "" when the request carries no session.
func requester(w http.ResponseWriter, r *http.Request) string {
	authUser, err := sessions.GetAuthUser(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find auth user: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return ""
	}
	return authUser.Id
}

func writeErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if StatusCode(err) == http.StatusInternalServerError {
		logger.Log(r.Context()).Errorf("%s: %v", msg, err)
	} else {
		logger.Log(r.Context()).Infof("%s: %v", msg, err)
	}
	WriteErr(w, err)
}

func (ph *PostHandler) Add(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	authorId := requester(w, r)
	if authorId == "" {
		return
	}

	np, err := parseNewPost(r)
	if err != nil {
		writeErr(w, r, "can't parse post form", err)
		return
	}
	np.AuthorId = authorId

	post, err := ph.Posts.CreatePost(r.Context(), np)
	if err != nil {
		writeErr(w, r, "can't create post", err)
		return
	}

	logger.Log(r.Context()).Infof("post %s created by %s", post.Id, authorId)
	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, post)
}

// parseNewPost accepts multipart forms (content, images, video) and plain
// url-encoded forms for text-only posts.
func parseNewPost(r *http.Request) (NewPost, error) {
	np := NewPost{}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && err != http.ErrNotMultipart {
		return np, fmt.Errorf("post/handlers: %w: malformed form: %v", ErrValidation, err)
	}
	np.Content = r.FormValue("content")
	if r.MultipartForm == nil {
		return np, nil
	}

	for _, fh := range r.MultipartForm.File["images"] {
		f, err := readFormFile(fh)
		if err != nil {
			return np, err
		}
		np.Images = append(np.Images, f)
	}
	switch videos := r.MultipartForm.File["video"]; len(videos) {
	case 0:
	case 1:
		f, err := readFormFile(videos[0])
		if err != nil {
			return np, err
		}
		np.Video = &f
	default:
		return np, fmt.Errorf("post/handlers: %w: only one video is allowed", ErrValidation)
	}
	return np, nil
}

func readFormFile(fh *multipart.FileHeader) (media.File, error) {
	if fh.Size > maxFileSize {
		return media.File{}, fmt.Errorf("post/handlers: %w: %q is larger than %d MB", ErrValidation, fh.Filename, maxFileSize>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return media.File{}, fmt.Errorf("post/handlers: %w: can't open %q: %v", ErrValidation, fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return media.File{}, fmt.Errorf("post/handlers: %w: can't read %q: %v", ErrValidation, fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return media.File{Name: fh.Filename, MimeType: mimeType, Data: data}, nil
}

func (ph PostHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := ph.Posts.GetFeed(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, "can't load posts from the repo", err)
		return
	}

	WriteRespJSON(w, posts)
}

func (ph PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	postId := PostId(mux.Vars(r)["id"])
	post, err := ph.Posts.GetPostById(r.Context(), postId)
	if err != nil {
		writeErr(w, r, fmt.Sprintf("can't get post with id %s", postId), err)
		return
	}

	WriteRespJSON(w, post)
}

func (ph *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId := requester(w, r)
	if userId == "" {
		return
	}
	postId := PostId(mux.Vars(r)["id"])

	likes, liked, err := ph.Posts.ToggleLike(r.Context(), postId, userId)
	if err != nil {
		writeErr(w, r, fmt.Sprintf("can't toggle like for post %s", postId), err)
		return
	}

	msg := "unliked"
	if liked {
		msg = "liked"
	}
	WriteRespJSON(w, likeResp{Message: msg, Likes: likes})
}

func (ph *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	commenter := requester(w, r)
	if commenter == "" {
		return
	}
	postId := PostId(mux.Vars(r)["id"])

	body := commentBody{}
	if err := ParseReqBody(r.Body, &body); err != nil {
		logger.Log(r.Context()).Infof("can't get comment body: %v", err)
		WriteMsg(w, "failed parsing comment body", http.StatusBadRequest)
		return
	}

	postWithComment, err := ph.Posts.AddComment(r.Context(), postId, commenter, body.Text)
	if err != nil {
		writeErr(w, r, fmt.Sprintf("can't add comment to post %s", postId), err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, postWithComment)
}

func (ph *PostHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	editor := requester(w, r)
	if editor == "" {
		return
	}
	vars := mux.Vars(r)
	postId := PostId(vars["postId"])
	commentId := comment.CommentId(vars["commentId"])

	body := commentBody{}
	if err := ParseReqBody(r.Body, &body); err != nil {
		logger.Log(r.Context()).Infof("can't get comment body: %v", err)
		WriteMsg(w, "failed parsing comment body", http.StatusBadRequest)
		return
	}

	post, err := ph.Posts.EditComment(r.Context(), postId, commentId, editor, body.Text)
	if err != nil {
		writeErr(w, r, fmt.Sprintf("can't edit comment %s of post %s", commentId, postId), err)
		return
	}

	WriteRespJSON(w, post)
}

func (ph *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	remover := requester(w, r)
	if remover == "" {
		return
	}
	vars := mux.Vars(r)
	postId := PostId(vars["postId"])
	commentId := comment.CommentId(vars["commentId"])

	postWithoutComment, err := ph.Posts.DeleteComment(r.Context(), postId, commentId, remover)
	if err != nil {
		writeErr(w, r, fmt.Sprintf("can't remove comment %s from post %s", commentId, postId), err)
		return
	}

	WriteRespJSON(w, postWithoutComment)
}

func (ph *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	authUser := requester(w, r)
	if authUser == "" {
		return
	}
	postId := PostId(mux.Vars(r)["id"])

	if err := ph.Posts.DeletePost(r.Context(), postId, authUser); err != nil {
		writeErr(w, r, fmt.Sprintf("can't remove post %s", postId), err)
		return
	}

	WriteMsg(w, "success", http.StatusOK)
}

// Routes registers the post endpoints on an authenticated subrouter.
func (ph *PostHandler) Routes(api *mux.Router) {
	api.HandleFunc("/posts", ph.Add).Methods("POST")
	api.HandleFunc("/posts", ph.List).Methods("GET")
	api.HandleFunc("/posts/{id}", ph.Get).Methods("GET")
	api.HandleFunc("/posts/{id}", ph.Delete).Methods("DELETE")
	api.HandleFunc("/posts/{id}/like", ph.Like).Methods("PUT")
	api.HandleFunc("/posts/{id}/comment", ph.AddComment).Methods("POST")
	api.HandleFunc("/posts/{postId}/comment/{commentId}", ph.EditComment).Methods("PUT")
	api.HandleFunc("/posts/{postId}/comment/{commentId}", ph.DeleteComment).Methods("DELETE")
}
