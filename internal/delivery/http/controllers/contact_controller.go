package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventmarket/internal/delivery/http/helpers"
	"eventmarket/internal/domain"
)

// ContactRequest is the request body for POST /contact
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate implements Validator.
func (c ContactRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(c.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// ContactResponse is the data payload for POST /contact (200).
type ContactResponse struct {
	Message string `json:"message"`
}

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{
		Logger:  logger,
		Service: svc,
	}
}

// SendMessage godoc
// @Summary Send a contact message
// @Description Delivers a contact-form message to the site operators by email.
// @Tags contact
// @Accept json
// @Produce json
// @Param body body ContactRequest true "Contact message"
// @Success 200 {object} helpers.APIResponse "data contains a status message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contact [post]
func (c *ContactController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.SendContactMessage(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), strings.TrimSpace(req.Subject), req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Internal server error.")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ContactResponse{Message: "Your message has been sent."})
}
