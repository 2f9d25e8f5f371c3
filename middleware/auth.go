package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gymratapp/gymrat-server/utils"
)

// Context keys set by AuthRequired for downstream handlers.
const (
	ContextUserIDKey = "user_id"
	ContextNameKey   = "name"
)

// AuthRequired validates the bearer token and stores the caller's
// identity on the gin context. Tokens are issued by the auth service;
// this layer only verifies them.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			utils.Respond(ctx, http.StatusUnauthorized, 40100, "missing authorization header", nil)
			ctx.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Respond(ctx, http.StatusUnauthorized, 40101, "malformed authorization header", nil)
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			utils.Respond(ctx, http.StatusUnauthorized, 40102, "invalid or expired token", nil)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextNameKey, claims.Name)
		ctx.Next()
	}
}
