package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentorportal/mentorportal-api/internal/middleware"
	"github.com/mentorportal/mentorportal-api/internal/models"
	"github.com/mentorportal/mentorportal-api/internal/service"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func callerFromContext(c *gin.Context) (service.Caller, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Caller{}, appErrors.ErrUnauthorized
	}
	return service.CallerFromClaims(claims), nil
}

func idParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}
