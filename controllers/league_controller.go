package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

type LeagueController struct {
	leagues *services.LeagueService
}

func NewLeagueController(leagues *services.LeagueService) *LeagueController {
	return &LeagueController{leagues: leagues}
}

// Create handles POST /leagues.
func (c *LeagueController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Prize       string `json:"prize" binding:"required"`
		Punishment  string `json:"punishment"`
		EndDate     string `json:"end_date" binding:"required"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request body: "+err.Error())
		return
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "end_date must be YYYY-MM-DD")
		return
	}

	league, err := c.leagues.Create(ctx.Request.Context(), userID, services.CreateLeagueInput{
		Name:        req.Name,
		Description: req.Description,
		Prize:       req.Prize,
		Punishment:  req.Punishment,
		EndDate:     endDate,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondServiceError(ctx, err, 50020)
		return
	}
	utils.Success(ctx, league)
}

// JoinByCode handles POST /leagues/join.
func (c *LeagueController) JoinByCode(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request body: "+err.Error())
		return
	}

	league, err := c.leagues.JoinByCode(ctx.Request.Context(), userID, req.Code)
	if err != nil {
		respondServiceError(ctx, err, 50021)
		return
	}
	utils.Success(ctx, league)
}

// JoinPublic handles POST /leagues/:id/join.
func (c *LeagueController) JoinPublic(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	leagueID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid league id")
		return
	}

	league, err := c.leagues.JoinPublic(ctx.Request.Context(), userID, uint(leagueID))
	if err != nil {
		respondServiceError(ctx, err, 50022)
		return
	}
	utils.Success(ctx, league)
}

// Update handles PUT /leagues/:id.
func (c *LeagueController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	leagueID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid league id")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Prize       string `json:"prize"`
		Punishment  string `json:"punishment"`
		EndDate     string `json:"end_date"`
		IsPublic    *bool  `json:"is_public"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request body: "+err.Error())
		return
	}

	in := services.UpdateLeagueInput{
		Name:        req.Name,
		Description: req.Description,
		Prize:       req.Prize,
		Punishment:  req.Punishment,
		IsPublic:    req.IsPublic,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40021, "end_date must be YYYY-MM-DD")
			return
		}
		in.EndDate = endDate
	}

	league, err := c.leagues.Update(ctx.Request.Context(), userID, uint(leagueID), in)
	if err != nil {
		respondServiceError(ctx, err, 50023)
		return
	}
	utils.Success(ctx, league)
}

// Delete handles DELETE /leagues/:id.
func (c *LeagueController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	leagueID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid league id")
		return
	}

	if err := c.leagues.Delete(ctx.Request.Context(), userID, uint(leagueID)); err != nil {
		respondServiceError(ctx, err, 50024)
		return
	}
	utils.Success(ctx, nil)
}

// Mine handles GET /leagues/mine.
func (c *LeagueController) Mine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	leagues, err := c.leagues.Mine(userID)
	if err != nil {
		respondServiceError(ctx, err, 50025)
		return
	}
	utils.Success(ctx, leagues)
}

// Public handles GET /leagues/public. The listing is read far more
// often than leagues change, so it goes through the redis cache; the
// league service invalidates on create/update/delete.
func (c *LeagueController) Public(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	key := fmt.Sprintf("cache:leagues:public:%d:%d", page, pageSize)

	if b, ok := utils.CacheGetBytes(key); ok {
		var cached json.RawMessage = b
		utils.Success(ctx, cached)
		return
	}

	leagues, total, err := c.leagues.Public(page, pageSize)
	if err != nil {
		respondServiceError(ctx, err, 50026)
		return
	}
	payload := gin.H{
		"leagues":   leagues,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
	utils.CacheSetJSON(key, payload, time.Minute)
	utils.Success(ctx, payload)
}
