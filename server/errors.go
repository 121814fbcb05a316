package server

import (
	"commonroom/apperr"
	"errors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindAuth:       http.StatusUnauthorized,
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindDomainRule: http.StatusUnprocessableEntity,
}

func sendError(c *gin.Context, err error) {
	status, ok := statusByKind[apperr.KindOf(err)]
	if !ok {
		log.Errorf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var appErr *apperr.Error
	errors.As(err, &appErr)
	log.Info(appErr.Message)

	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	sendError(c, apperr.Validation("Malformed request body", map[string]string{"body": err.Error()}))
}
