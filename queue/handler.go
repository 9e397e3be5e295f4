// Package queue provides the SQS handler for bulk post maintenance commands.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/postbox/store"
)

// CommandDeleteAll is the message body that triggers deletion of every post.
const CommandDeleteAll = "DELETE_ALL"

// ErrUnsupportedCommand is returned for any message body other than a known command.
var ErrUnsupportedCommand = errors.New("unsupported queue command")

// Posts is the subset of the post store used by the queue handler.
type Posts interface {
	Scan(limit int32) store.Collection
	Delete(ctx context.Context, post store.Post) error
}

// Handler processes SQS batches carrying post commands.
type Handler struct {
	posts  Posts
	logger *slog.Logger
}

// NewHandler creates a new queue handler.
func NewHandler(posts Posts, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		posts:  posts,
		logger: logger,
	}
}

// HandleDeleteAll processes an SQS batch in order. The first failing message
// aborts the batch; later messages are not processed.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleDeleteAll(ctx context.Context, event events.SQSEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			return err // Whole batch is retried, eventually DLQ
		}
	}
	return nil
}

// processRecord executes the command carried by a single message.
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) error {
	if record.Body != CommandDeleteAll {
		h.logger.Error("unsupported queue event",
			"messageId", record.MessageId,
			"body", record.Body,
		)
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, record.Body)
	}

	count, err := h.deleteAll(ctx)
	if err != nil {
		h.logger.Error("delete all posts failed",
			"messageId", record.MessageId,
			"deletedCount", count,
			"error", err,
		)
		return err
	}

	h.logger.Info("deleted posts",
		"messageId", record.MessageId,
		"deletedCount", count,
	)
	return nil
}

// deleteAll deletes every scanned post in scan order and returns how many
// were deleted. It stops at the first error; deletes already made stay.
func (h *Handler) deleteAll(ctx context.Context) (int, error) {
	count := 0
	for post, err := range h.posts.Scan(store.DefaultPageSize).All(ctx) {
		if err != nil {
			return count, err
		}
		if err := h.posts.Delete(ctx, post); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
