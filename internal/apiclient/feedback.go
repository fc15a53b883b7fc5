package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

var (
	epListFeedback     = endpoint{http.MethodGet, "/feedback/all"}
	epListUserFeedback = endpoint{http.MethodGet, "/feedback/user/{id}"}
	epSubmitFeedback   = endpoint{http.MethodPost, "/feedback/submit"}
	epUpdateFeedback   = endpoint{http.MethodPut, "/feedback/update/{id}"}
	epDeleteFeedback   = endpoint{http.MethodDelete, "/feedback/delete/{id}"}
)

// ListFeedback returns every feedback record, for the admin queue.
func (c *Client) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	var out []models.Feedback
	if err := c.do(ctx, epListFeedback, epListFeedback.route, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUserFeedback(ctx context.Context, userID uint) ([]models.Feedback, error) {
	var out []models.Feedback
	if err := c.do(ctx, epListUserFeedback, epListUserFeedback.path(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitFeedback creates a record. An empty status is sent as Pending.
func (c *Client) SubmitFeedback(ctx context.Context, fb models.NewFeedback) (*models.Feedback, error) {
	if fb.Status == "" {
		fb.Status = models.StatusPending
	}
	var out models.Feedback
	if err := c.do(ctx, epSubmitFeedback, epSubmitFeedback.route, fb, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id uint, upd models.FeedbackUpdate) error {
	return c.do(ctx, epUpdateFeedback, epUpdateFeedback.path(id), upd, nil)
}

func (c *Client) DeleteFeedback(ctx context.Context, id uint) error {
	return c.do(ctx, epDeleteFeedback, epDeleteFeedback.path(id), nil, nil)
}
