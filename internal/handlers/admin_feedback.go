package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/forms"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

func (h *Handlers) initAdminPage(c echo.Context, _ *session.Session, v *View) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "page.admin").Logger()

	list, err := h.API.ListFeedback(ctx)
	switch {
	case apiclient.IsUnauthorized(err):
		return err
	case err != nil:
		l.Warn().Int("status", backendStatus(err)).Str("reason", "cannot load feedback").Err(err).Msg("load_feedback_failed")
		v.Notify("Failed to load feedbacks")
		v.Content = render.FeedbackTable{}
	default:
		v.Content = render.AdminFeedbackTable(list)
	}
	return nil
}

// UpdateStatus saves a new status and answers with just that row, rebuilt
// from the posted row fields. The list is not reloaded.
func (h *Handlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "feedback.update_status").Logger()
	s := session.FromContext(c)

	id, err := paramID(c)
	if err != nil {
		l.Warn().Int("status", 400).Str("reason", "bad id").Err(err).Msg("update_status_failed")
		return fail(c, http.StatusBadRequest, "Invalid feedback id", adminPath)
	}

	var form forms.StatusForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("update_status_failed")
		return fail(c, http.StatusBadRequest, "Invalid form", adminPath)
	}
	if err := form.Validate(); err != nil {
		l.Info().Int("status", 422).Str("reason", err.Error()).Msg("update_status_failed")
		return fail(c, http.StatusUnprocessableEntity, err.Error(), adminPath)
	}

	if err := h.API.UpdateFeedback(ctx, id, form.Update()); err != nil {
		l.Warn().Int("status", backendStatus(err)).Str("reason", "backend rejected update").Err(err).Msg("update_status_failed")
		return h.backendFailed(c, err, "Failed to update status", adminPath)
	}

	h.publish(c, events.TopicFeedback, events.Event{Type: "feedback_status_updated", UserID: s.User.ID, FeedbackID: id, Status: form.Status})
	l.Info().Uint("feedback_id", id).Str("new_status", form.Status).Msg("update_status_success")

	row := render.FeedbackRow{
		ID:             id,
		User:           form.User,
		Product:        form.Product,
		Rating:         form.RatingValue(),
		Comment:        form.Comment,
		AdminComment:   form.AdminComment,
		StatusEditable: true,
	}
	row.ApplyStatus(models.Status(form.Status))
	return done(c, "Status updated", adminPath, "admin_feedback_row", row)
}
