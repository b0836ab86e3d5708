package handlers

import (
	"errors"
	"net/http"

	"frodi/internal/logger"
	"frodi/internal/models"
	"frodi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Start posts one message to the caller's assistant session.
func (h *ChatHandler) Start(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Validation error for /adstod/start")
		detail := "Invalid request body."
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			detail = "Message must not be empty."
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: detail})
		return
	}

	reply, err := h.chat.Send(c.Request.Context(), request)
	if err != nil {
		var clientErr *services.ClientInputError
		if errors.As(err, &clientErr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: clientErr.Detail})
			return
		}
		logger.WithFields(logrus.Fields{
			"sessionId": request.SessionID,
			"error":     err.Error(),
		}).Error("Assistant exchange failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: genericErrorDetail})
		return
	}

	c.JSON(http.StatusOK, reply)
}
