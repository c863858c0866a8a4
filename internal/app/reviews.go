package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelbase/pkg/domain"
)

// AddReview attaches a review to a movie. The id and timestamps are assigned
// server side.
func (a *App) AddReview(movieID, authorID string, rating float64, body string) (domain.Review, error) {
	if strings.TrimSpace(movieID) == "" {
		return domain.Review{}, fmt.Errorf("%w: movie id required", ErrInvalidArgument)
	}
	if rating < 0 || rating > 10 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidArgument)
	}
	if _, err := a.GetMovieByID(movieID); err != nil {
		return domain.Review{}, err
	}
	now := time.Now().UTC()
	review := domain.Review{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		AuthorID:  authorID,
		Rating:    rating,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveReview(review); err != nil {
		return domain.Review{}, fmt.Errorf("save review: %w", err)
	}
	return review, nil
}

// EditReview replaces the rating and text of an existing review.
func (a *App) EditReview(movieID, reviewID string, rating float64, body string) (domain.Review, error) {
	if rating < 0 || rating > 10 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidArgument)
	}
	review, ok, err := a.store.GetReview(movieID, reviewID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("fetch review: %w", err)
	}
	if !ok {
		return domain.Review{}, fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}
	review.Rating = rating
	review.Body = body
	review.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveReview(review); err != nil {
		return domain.Review{}, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes one review from a movie.
func (a *App) DeleteReview(movieID, reviewID string) error {
	_, ok, err := a.store.GetReview(movieID, reviewID)
	if err != nil {
		return fmt.Errorf("fetch review: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}
	return a.store.DeleteReview(movieID, reviewID)
}

// ListReviews returns all reviews for a movie.
func (a *App) ListReviews(movieID string) ([]domain.Review, error) {
	return a.store.ListReviews(movieID)
}

// AverageRating computes the review aggregate on demand. A movie without
// reviews reports a zero average and zero count rather than an error.
func (a *App) AverageRating(movieID string) (domain.RatingSummary, error) {
	reviews, err := a.store.ListReviews(movieID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return domain.RatingSummary{}, nil
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return domain.RatingSummary{
		AverageRating: sum / float64(len(reviews)),
		TotalReviews:  len(reviews),
	}, nil
}
