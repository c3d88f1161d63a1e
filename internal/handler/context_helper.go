package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/middleware"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
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

// actorFromContext returns the verified actor, or a zero actor for
// unauthenticated callers on optional-auth routes.
func actorFromContext(c *gin.Context) models.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Actor{}
	}
	return claims.Actor()
}
