// Package api provides API Gateway proxy handlers for listing, reading, and
// creating blog posts.
package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jacentio/postbox/store"
)

const (
	// ListPageSize is the number of posts returned by Index. Only the first
	// page of the scan is ever exposed.
	ListPageSize int32 = 25

	// PathParamID is the path parameter carrying the post id.
	PathParamID = "uuid"

	createFailedMessage = "Failed to create new post."
)

var (
	json     = sonic.ConfigStd
	validate = validator.New()
)

// Posts is the subset of the post store used by the handlers.
type Posts interface {
	Scan(limit int32) store.Collection
	Find(ctx context.Context, id string) (*store.Post, error)
	Create(ctx context.Context, post store.Post) error
}

// Handler serves the post endpoints. It holds no per-request state.
type Handler struct {
	posts  Posts
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a new API handler.
func NewHandler(posts Posts, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		posts:  posts,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Route dispatches a proxy request to Index, Get or Create.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) Route(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodGet:
		if req.PathParameters[PathParamID] != "" {
			return h.Get(ctx, req)
		}
		return h.Index(ctx, req)
	case http.MethodPost:
		return h.Create(ctx, req)
	default:
		return respond(http.StatusMethodNotAllowed, errorResponse{
			Error: fmt.Sprintf("Method %s not allowed", req.HTTPMethod),
		})
	}
}

// Index lists the first page of posts.
func (h *Handler) Index(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	posts, err := h.posts.Scan(ListPageSize).Page(ctx)
	if err != nil {
		h.logger.Error("failed to list posts", "error", err)
		return events.APIGatewayProxyResponse{}, err
	}

	h.logger.Debug("listed posts", "count", len(posts))
	return respond(http.StatusOK, listResponse{Posts: lo.Map(posts, func(p store.Post, _ int) PostResponse {
		return toPostResponse(p)
	})})
}

// Get returns a single post by the uuid path parameter.
func (h *Handler) Get(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters[PathParamID]

	var post *store.Post
	if id != "" {
		var err error
		post, err = h.posts.Find(ctx, id)
		if err != nil {
			h.logger.Error("failed to find post", "postId", id, "error", err)
			return events.APIGatewayProxyResponse{}, err
		}
	}

	if post == nil {
		return respond(http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("Post %s not found!", id),
		})
	}
	return respond(http.StatusOK, postEnvelope{Post: toPostResponse(*post)})
}

// Create stores a new post built from the title and body of the request.
// A body that is not valid JSON, or that lacks a title or body, is returned
// as an error, failing the invocation.
func (h *Handler) Create(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	input, err := decodeCreateRequest(req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	post := store.Post{
		ID:        h.newID(),
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: h.now().UTC().Truncate(time.Second),
	}

	if err := h.posts.Create(ctx, post); err != nil {
		h.logger.Error("failed to create post", "postId", post.ID, "error", err)
		return respond(http.StatusInternalServerError, errorResponse{Error: createFailedMessage})
	}

	h.logger.Info("created post", "postId", post.ID)
	return respond(http.StatusOK, postEnvelope{Post: toPostResponse(post)})
}

// decodeCreateRequest parses and validates the request body. Fields other
// than title and body are ignored.
func decodeCreateRequest(req events.APIGatewayProxyRequest) (createRequest, error) {
	var input createRequest

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return input, fmt.Errorf("decode base64 body: %w", err)
		}
		body = decoded
	}

	if err := json.Unmarshal(body, &input); err != nil {
		return input, fmt.Errorf("parse create request: %w", err)
	}
	if err := validate.Struct(input); err != nil {
		return input, fmt.Errorf("invalid create request: %w", err)
	}
	return input, nil
}

// respond encodes v as the JSON body of a proxy response.
func respond(status int, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.MarshalToString(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("encode response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}, nil
}
