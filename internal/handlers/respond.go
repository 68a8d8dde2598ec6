package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"groupchat/api/internal/apperr"
)

// Envelope is the uniform response shape of every endpoint.
type Envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{
		Error:   false,
		Message: message,
		Status:  http.StatusOK,
		Data:    data,
	})
}

func respondErr(c *gin.Context, err error) {
	status := statusOf(apperr.KindOf(err))
	c.JSON(status, Envelope{
		Error:   true,
		Message: apperr.Message(err),
		Status:  status,
		Data:    nil,
	})
}

func respondBindErr(c *gin.Context, err error) {
	respondErr(c, apperr.Wrap(apperr.KindValidation, "parameters missing", err))
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusForbidden
	case apperr.KindAuthentication:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
