package handler

import (
	"net/http"

	"hospital-admission/internal/admission"
	"hospital-admission/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionCookie = "admission_session"

// AdmissionHandler serves the admission form. Each browser session gets its
// own controller, so a double submit from one form is rejected while other
// sessions are unaffected.
type AdmissionHandler struct {
	sessions      *admission.Sessions
	logger        zerolog.Logger
	secureCookies bool
}

func NewAdmissionHandler(sessions *admission.Sessions, secureCookies bool, logger zerolog.Logger) *AdmissionHandler {
	return &AdmissionHandler{
		sessions:      sessions,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

type admitPage struct {
	admission.Snapshot
	Genders     []models.Gender
	Specialties []models.Specialty
}

// redirectNavigator navigates by answering the form POST with 303 See Other
type redirectNavigator struct {
	c *gin.Context
}

func (n redirectNavigator) Navigate(route string) {
	n.c.Redirect(http.StatusSeeOther, route)
}

// ShowForm renders the admission form for the caller's session
func (h *AdmissionHandler) ShowForm(c *gin.Context) {
	h.render(c, http.StatusOK, h.controller(c))
}

// SubmitForm stores the posted fields and runs one submission
func (h *AdmissionHandler) SubmitForm(c *gin.Context) {
	ctrl := h.controller(c)

	form := admission.NewForm()
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Debug().Err(err).Msg("Unreadable admission form")
		h.render(c, http.StatusBadRequest, ctrl)
		return
	}
	ctrl.SetForm(form)

	result := ctrl.Submit(actorContext(c), redirectNavigator{c: c})
	switch result.Outcome {
	case admission.Admitted:
		// redirect already written by the navigator
	case admission.Failed:
		h.render(c, http.StatusUnprocessableEntity, ctrl)
	default:
		h.render(c, http.StatusConflict, ctrl)
	}
}

func (h *AdmissionHandler) render(c *gin.Context, status int, ctrl *admission.Controller) {
	c.HTML(status, "admit.tmpl", admitPage{
		Snapshot:    ctrl.Snapshot(),
		Genders:     models.Genders,
		Specialties: models.Specialties,
	})
}

// controller returns the caller's session controller, issuing a session
// cookie when the request has none
func (h *AdmissionHandler) controller(c *gin.Context) *admission.Controller {
	if raw, err := c.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return h.sessions.Get(id)
		}
	}

	id := uuid.New()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id.String(), 0, "/patients", "", h.secureCookies, true)
	return h.sessions.Get(id)
}
