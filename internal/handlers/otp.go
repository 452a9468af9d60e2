package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskboxhq/taskbox/internal/services"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/mail"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// OTPHandler exposes the one-time code endpoints.
type OTPHandler struct {
	otp        *services.OTPService
	mailer     mail.Mailer
	activity   *services.ActivityService
	dispatcher *tasks.Dispatcher
	// exposeCode echoes the generated code in the response body for
	// development environments without a mail server.
	exposeCode bool
	log        *zap.Logger
}

// NewOTPHandler builds an OTPHandler.
func NewOTPHandler(otp *services.OTPService, mailer mail.Mailer, activity *services.ActivityService, dispatcher *tasks.Dispatcher, exposeCode bool) *OTPHandler {
	return &OTPHandler{
		otp:        otp,
		mailer:     mailer,
		activity:   activity,
		dispatcher: dispatcher,
		exposeCode: exposeCode,
		log:        logger.WithModule("otp"),
	}
}

// OTPRequestPayload asks for a code to be issued.
type OTPRequestPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerifyPayload submits a code for verification.
type OTPVerifyPayload struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// Request handles POST /api/otp/request. The code is delivered by email on
// the deferred task path; delivery problems never affect the response.
func (h *OTPHandler) Request(c *gin.Context) {
	var req OTPRequestPayload
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	code, err := h.otp.Issue(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := gin.H{
		"email":      req.Email,
		"expires_in": int64(h.otp.TTL() / time.Second),
	}
	if h.exposeCode {
		data["code"] = code
	}

	response.Success(c, http.StatusOK, "otp.issued", data)

	h.deliverCode(c, req.Email, code)
	h.recordActivity(c, "otp.request", req.Email, "success")
}

// Verify handles POST /api/otp/verify.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req OTPVerifyPayload
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.otp.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		response.Error(c, err)
		h.recordActivity(c, "otp.verify", req.Email, "failure")
		return
	}

	response.Success(c, http.StatusOK, "otp.verified", gin.H{"email": req.Email, "verified": true})
	h.recordActivity(c, "otp.verify", req.Email, "success")
}

func (h *OTPHandler) deliverCode(c *gin.Context, email, code string) {
	if h.dispatcher == nil || h.mailer == nil {
		return
	}

	expiryMinutes := int(h.otp.TTL() / time.Minute)
	msg := mail.OTPMessage(email, code, expiryMinutes)

	h.dispatcher.Go("otp.email", func(ctx context.Context) error {
		err := h.mailer.Send(ctx, msg)
		if errors.Is(err, mail.ErrSMTPDisabled) {
			h.log.Debug("otp email skipped, smtp disabled", zap.String("email", email))
			return nil
		}
		return err
	})
}

func (h *OTPHandler) recordActivity(c *gin.Context, action, email, result string) {
	if h.dispatcher == nil || h.activity == nil {
		return
	}

	entry := services.ActivityEntry{
		Action:    action,
		Resource:  email,
		Result:    result,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	h.dispatcher.Go("activity.log", func(ctx context.Context) error {
		return h.activity.Log(ctx, entry)
	})
}
