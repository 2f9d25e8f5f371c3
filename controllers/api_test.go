package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gymratapp/gymrat-server/middleware"
	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

// newTestAPI assembles the protected API surface against an in-memory
// database, without the access log and rate limiter.
func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.League{},
		&models.LeagueMember{},
		&models.Activity{},
		&models.PointEntry{},
		&models.Routine{},
	))

	ledger := services.NewLedger(db, 3, time.Millisecond)
	routines := services.NewRoutineService(db)
	activities := services.NewActivityService(db, ledger, routines)
	leagues := services.NewLeagueService(db)

	activityCtl := NewActivityController(activities)
	leagueCtl := NewLeagueController(leagues)
	boardCtl := NewLeaderboardController(db, leagues)
	profileCtl := NewProfileController(db)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired())
	api.POST("/activities", activityCtl.Log)
	api.DELETE("/activities/:id", activityCtl.Delete)
	api.POST("/leagues", leagueCtl.Create)
	api.POST("/leagues/join", leagueCtl.JoinByCode)
	api.GET("/leaderboard/global", boardCtl.Global)
	api.GET("/leagues/:id/leaderboard", boardCtl.ForLeague)
	api.GET("/users/me", profileCtl.Me)
	return r, db
}

func authedRequest(t *testing.T, method, path string, body interface{}, userID uint, name string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := utils.GenerateToken(userID, name, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	r, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogActivityEndpoint(t *testing.T) {
	r, db := newTestAPI(t)
	user := models.User{Name: "ana"}
	require.NoError(t, db.Create(&user).Error)

	body := gin.H{
		"sport_id": "running",
		"duration": 30,
		"distance": "5", // the app submits numerics as strings
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/activities", body, user.ID, user.Name))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	assert.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["points_pending"])
	activity := data["activity"].(map[string]interface{})
	assert.EqualValues(t, 50, activity["points"])

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, 50, stored.TotalPoints)
}

func TestLogActivityRejectsBadBody(t *testing.T) {
	r, db := newTestAPI(t)
	user := models.User{Name: "ana"}
	require.NoError(t, db.Create(&user).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/activities",
		gin.H{"duration": 30}, user.ID, user.Name))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteForeignActivityReturns403(t *testing.T) {
	r, db := newTestAPI(t)
	owner := models.User{Name: "ana"}
	require.NoError(t, db.Create(&owner).Error)
	intruder := models.User{Name: "ben"}
	require.NoError(t, db.Create(&intruder).Error)

	activity := models.Activity{UserID: owner.ID, SportID: "running", Duration: 30, Points: 50}
	require.NoError(t, db.Create(&activity).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodDelete, "/api/v1/activities/1", nil, intruder.ID, intruder.Name))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeagueJoinConflict(t *testing.T) {
	r, db := newTestAPI(t)
	owner := models.User{Name: "ana"}
	require.NoError(t, db.Create(&owner).Error)

	body := gin.H{"name": "Crew", "prize": "asado", "end_date": "2026-12-31"}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/leagues", body, owner.ID, owner.Name))
	require.Equal(t, http.StatusOK, w.Code)

	league := decodeEnvelope(t, w).Data.(map[string]interface{})
	code := league["code"].(string)

	// The creator is already enrolled.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/v1/leagues/join",
		gin.H{"code": code}, owner.ID, owner.Name))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGlobalLeaderboardRanksByLifetimePoints(t *testing.T) {
	r, db := newTestAPI(t)
	require.NoError(t, db.Create(&models.User{Name: "ana", TotalPoints: 120}).Error)
	require.NoError(t, db.Create(&models.User{Name: "ben", TotalPoints: 300}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/leaderboard/global", nil, 1, "ana"))
	require.Equal(t, http.StatusOK, w.Code)

	rows := decodeEnvelope(t, w).Data.([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "ben", first["name"])
	assert.EqualValues(t, 1, first["rank"])
	assert.EqualValues(t, 300, first["points"])

	// The "global" sentinel routes to the same board.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/v1/leagues/global/leaderboard", nil, 1, "ana"))
	require.Equal(t, http.StatusOK, w.Code)
	rows = decodeEnvelope(t, w).Data.([]interface{})
	assert.Len(t, rows, 2)
}
