package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

const leaderboardCacheTTL = 30 * time.Second

type LeaderboardController struct {
	db      *gorm.DB
	leagues *services.LeagueService
}

func NewLeaderboardController(db *gorm.DB, leagues *services.LeagueService) *LeaderboardController {
	return &LeaderboardController{db: db, leagues: leagues}
}

// leaderboardRow is one ranked entry.
type leaderboardRow struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
	Points int    `json:"points"`
}

// Global handles GET /leaderboard/global: all users ranked by lifetime
// total. The global ranking is a projection over user totals, never a
// stored league.
func (c *LeaderboardController) Global(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	key := fmt.Sprintf("cache:leaderboard:global:%d:%d", page, pageSize)

	if b, ok := utils.CacheGetBytes(key); ok {
		var cached []leaderboardRow
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var users []models.User
	if err := c.db.
		Order("total_points DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		respondServiceError(ctx, err, 50030)
		return
	}

	rows := make([]leaderboardRow, len(users))
	base := (page - 1) * pageSize
	for i, u := range users {
		rows[i] = leaderboardRow{
			Rank:   base + i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Bio:    u.Bio,
			Points: u.TotalPoints,
		}
	}

	utils.CacheSetJSON(key, rows, leaderboardCacheTTL)
	utils.Success(ctx, rows)
}

// ForLeague handles GET /leagues/:id/leaderboard. The reserved id
// "global" routes to the global ranking so clients can treat both
// boards uniformly.
func (c *LeaderboardController) ForLeague(ctx *gin.Context) {
	if ctx.Param("id") == models.GlobalLeagueID {
		c.Global(ctx)
		return
	}

	leagueID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid league id")
		return
	}

	if _, err := c.leagues.Get(ctx.Request.Context(), uint(leagueID)); err != nil {
		respondServiceError(ctx, err, 50031)
		return
	}

	key := fmt.Sprintf("cache:leaderboard:league:%d", leagueID)
	if b, ok := utils.CacheGetBytes(key); ok {
		var cached []leaderboardRow
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	members, err := c.leagues.Members(uint(leagueID))
	if err != nil {
		respondServiceError(ctx, err, 50031)
		return
	}

	userIDs := make([]uint, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}

	usersByID := make(map[uint]models.User, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := c.db.Where("id IN ?", utils.UniqueUint(userIDs)).
			Find(&users).Error; err != nil {
			respondServiceError(ctx, err, 50031)
			return
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	rows := make([]leaderboardRow, len(members))
	for i, m := range members {
		u := usersByID[m.UserID]
		rows[i] = leaderboardRow{
			Rank:   i + 1,
			UserID: m.UserID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Bio:    u.Bio,
			Points: m.Points,
		}
	}

	utils.CacheSetJSON(key, rows, leaderboardCacheTTL)
	utils.Success(ctx, rows)
}
