package api

import (
	"time"

	"github.com/jacentio/postbox/store"
)

// PostResponse is the external representation of a post.
type PostResponse struct {
	PostUUID  string    `json:"post_uuid"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type createRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

type listResponse struct {
	Posts []PostResponse `json:"posts"`
}

type postEnvelope struct {
	Post PostResponse `json:"post"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPostResponse(p store.Post) PostResponse {
	return PostResponse{
		PostUUID:  p.ID,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt.UTC(),
	}
}
