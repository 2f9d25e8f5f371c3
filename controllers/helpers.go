package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymratapp/gymrat-server/middleware"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

// getUserID extracts the authenticated user id set by the auth
// middleware. Returns false if the handler ran without it.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// parsePagination reads page and page_size query params with sane
// bounds.
func parsePagination(ctx *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// respondServiceError maps service sentinels onto HTTP statuses and
// business codes; site is a per-endpoint fallback code for unexpected
// failures.
func respondServiceError(ctx *gin.Context, err error, site int) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorw("unexpected service error", "site", site, "error", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, site, "internal server error")
	}
}
