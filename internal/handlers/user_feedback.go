package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/forms"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

func (h *Handlers) userTable(ctx context.Context, userID uint) (render.FeedbackTable, error) {
	list, err := h.API.ListUserFeedback(ctx, userID)
	if err != nil {
		return render.FeedbackTable{}, err
	}
	return render.UserFeedbackTable(list), nil
}

func (h *Handlers) initUserPage(c echo.Context, s *session.Session, v *View) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "page.user").Logger()
	page := render.UserPage{}

	products, err := h.API.ListProducts(ctx)
	switch {
	case apiclient.IsUnauthorized(err):
		return err
	case err != nil:
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load products").Err(err).Msg("load_products_failed")
		v.Notify("Failed to load products")
	default:
		page.Products = render.ProductOptions(products)
	}

	table, err := h.userTable(ctx, s.User.ID)
	switch {
	case apiclient.IsUnauthorized(err):
		return err
	case err != nil:
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load feedback").Err(err).Msg("load_feedback_failed")
		v.Notify("Failed to load feedbacks")
	default:
		page.Table = table
	}

	v.Content = page
	return nil
}

// reloadUserTable finishes a successful mutation by re-fetching the
// user's list; the table is never patched locally.
func (h *Handlers) reloadUserTable(c echo.Context, l zerolog.Logger, notice string) error {
	s := session.FromContext(c)
	table, err := h.userTable(c.Request().Context(), s.User.ID)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.expire(c)
		}
		// the change is saved; only the list is unavailable
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot reload feedback").Err(err).Msg("load_feedback_failed")
		return done(c, notice+"\nFailed to load feedbacks", userPath, "user_feedback_table", render.FeedbackTable{})
	}
	return done(c, notice, userPath, "user_feedback_table", table)
}

func (h *Handlers) SubmitFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "feedback.submit").Logger()
	s := session.FromContext(c)

	var form forms.FeedbackForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("feedback_submit_failed")
		return fail(c, http.StatusBadRequest, "Invalid form", userPath)
	}
	if err := form.Validate(); err != nil {
		l.Info().Int("status", 422).Str("reason", err.Error()).Msg("feedback_submit_failed")
		return fail(c, http.StatusUnprocessableEntity, err.Error(), userPath)
	}

	sub := form.Submission(s.User.ID)
	created, err := h.API.SubmitFeedback(ctx, sub)
	if err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected feedback").Err(err).Msg("feedback_submit_failed")
		return h.backendFailed(c, err, serverText(err, "Failed to submit feedback"), userPath)
	}

	h.publish(c, events.TopicFeedback, events.Event{
		Type:       "feedback_submitted",
		UserID:     s.User.ID,
		FeedbackID: created.ID,
		ProductID:  sub.Product.ID,
		Rating:     sub.Rating,
		Status:     string(sub.Status),
	})
	l.Info().Uint("feedback_id", created.ID).Msg("feedback_submit_success")

	return h.reloadUserTable(c, l, "Feedback submitted successfully")
}

func (h *Handlers) DeleteFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "feedback.delete").Logger()
	s := session.FromContext(c)

	id, err := paramID(c)
	if err != nil {
		l.Warn().Int("status", 400).Str("reason", "bad id").Err(err).Msg("feedback_delete_failed")
		return fail(c, http.StatusBadRequest, "Invalid feedback id", userPath)
	}

	if err := h.API.DeleteFeedback(ctx, id); err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected delete").Err(err).Msg("feedback_delete_failed")
		return h.backendFailed(c, err, "Failed to delete feedback", userPath)
	}

	h.publish(c, events.TopicFeedback, events.Event{Type: "feedback_deleted", UserID: s.User.ID, FeedbackID: id})
	l.Info().Uint("feedback_id", id).Msg("feedback_delete_success")

	return h.reloadUserTable(c, l, "Deleted successfully")
}

// EditComment swaps a comment cell for an input holding the current text.
func (h *Handlers) EditComment(c echo.Context) error {
	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, userPath)
	}
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "feedback.edit_comment").Logger()
	s := session.FromContext(c)

	id, err := paramID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid feedback id", userPath)
	}

	table, err := h.userTable(ctx, s.User.ID)
	if err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load feedback").Err(err).Msg("edit_comment_failed")
		return h.backendFailed(c, err, "Failed to load feedbacks", userPath)
	}
	row, ok := table.Row(id)
	if !ok {
		l.Warn().Int("status", 404).Uint("feedback_id", id).Str("reason", "not in user's list").Msg("edit_comment_failed")
		return fail(c, http.StatusNotFound, "Feedback not found", userPath)
	}
	return c.Render(http.StatusOK, "comment_editor", row)
}

// UpdateComment saves an inline edit. Anything short of a saved change
// puts the original text back into the cell.
func (h *Handlers) UpdateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "feedback.update_comment").Logger()
	s := session.FromContext(c)

	id, err := paramID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid feedback id", userPath)
	}

	var form forms.CommentForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("update_comment_failed")
		return fail(c, http.StatusBadRequest, "Invalid form", userPath)
	}
	original := render.FeedbackRow{ID: id, Comment: form.Original}

	if err := form.Validate(); err != nil {
		notify(c, err.Error())
		return c.Render(http.StatusOK, "comment_cell", original)
	}
	if !form.Changed() {
		return c.Render(http.StatusOK, "comment_cell", original)
	}

	comment := form.Comment
	if err := h.API.UpdateFeedback(ctx, id, models.FeedbackUpdate{Comment: &comment}); err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.expire(c)
		}
		l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected update").Err(err).Msg("update_comment_failed")
		notify(c, "Failed to update comment")
		return c.Render(http.StatusOK, "comment_cell", original)
	}

	h.publish(c, events.TopicFeedback, events.Event{Type: "feedback_comment_updated", UserID: s.User.ID, FeedbackID: id})
	l.Info().Uint("feedback_id", id).Msg("update_comment_success")

	table, err := h.userTable(ctx, s.User.ID)
	if err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot reload feedback").Err(err).Msg("load_feedback_failed")
		notify(c, "Comment updated\nFailed to load feedbacks")
		updated := original
		updated.Comment = comment
		return c.Render(http.StatusOK, "comment_cell", updated)
	}

	c.Response().Header().Set("HX-Retarget", "#user-feedback-table")
	c.Response().Header().Set("HX-Reswap", "outerHTML")
	notify(c, "Comment updated")
	return c.Render(http.StatusOK, "user_feedback_table", table)
}
