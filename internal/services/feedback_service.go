package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UniFlow-2025/enrollment-service/internal/cache"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

type feedbackService struct {
	store     *cache.FlashStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFeedbackService(store *cache.FlashStore, logger *slog.Logger, v *validator.Validator) FeedbackService {
	return &feedbackService{store: store, logger: logger, validator: v}
}

// Submit validates the contact form and parks it under the caller's token so
// the success page can show it exactly once.
func (s *feedbackService) Submit(ctx context.Context, token string, req *FeedbackRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	if err := s.store.Put(ctx, token, req); err != nil {
		return fmt.Errorf("failed to store feedback submission: %w", err)
	}

	s.logger.Info("feedback submitted", "subject", req.Subject)
	return nil
}

// TakeSubmission consumes the parked submission; a second read (refresh of
// the success page) finds nothing.
func (s *feedbackService) TakeSubmission(ctx context.Context, token string) (*FeedbackRequest, error) {
	var req FeedbackRequest
	if err := s.store.Take(ctx, token, &req); err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, NewNotFoundError("submission", 0)
		}
		return nil, fmt.Errorf("failed to read feedback submission: %w", err)
	}
	return &req, nil
}
