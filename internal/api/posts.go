package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// PostsService implements domain.PostService against /posts.
type PostsService struct {
	client *Client
}

func NewPostsService(client *Client) *PostsService {
	return &PostsService{client: client}
}

func (s *PostsService) ListPosts(ctx context.Context, cursor string, limit int) (*domain.Page[domain.Post], error) {
	return doList[domain.Post](ctx, s.client, "/posts", pageQuery(cursor, limit))
}

func (s *PostsService) SearchPosts(ctx context.Context, query, cursor string, limit int) (*domain.Page[domain.Post], error) {
	q := pageQuery(cursor, limit)
	q.Set("q", query)
	return doList[domain.Post](ctx, s.client, "/posts/search", q)
}

func (s *PostsService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.client.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostsService) CreatePost(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	var post domain.Post
	if err := s.client.do(ctx, http.MethodPost, "/posts", nil, draft, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostsService) UpdatePost(ctx context.Context, id string, draft domain.PostDraft) (*domain.Post, error) {
	var post domain.Post
	if err := s.client.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), nil, draft, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostsService) DeletePost(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// ToggleLike flips the viewer's like. The response carries the server's
// authoritative flag and counter, which may reflect concurrent likes from
// other viewers.
func (s *PostsService) ToggleLike(ctx context.Context, id string) (*domain.ToggleState, error) {
	var resp struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likesCount"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/like", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.ToggleState{Active: resp.Liked, Count: resp.LikesCount}, nil
}

func (s *PostsService) ToggleSave(ctx context.Context, id string) (*domain.ToggleState, error) {
	var resp struct {
		Saved      bool `json:"saved"`
		SavesCount int  `json:"savesCount"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/save", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.ToggleState{Active: resp.Saved, Count: resp.SavesCount}, nil
}

func (s *PostsService) CreateComment(ctx context.Context, postID, content string) (*domain.Comment, error) {
	body := map[string]string{"content": content}
	var comment domain.Comment
	if err := s.client.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", nil, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// MarkViewed records a view. Telemetry only; callers swallow failures.
func (s *PostsService) MarkViewed(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/view", nil, nil, nil)
}
