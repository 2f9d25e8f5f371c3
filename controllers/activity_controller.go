package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gymratapp/gymrat-server/config"
	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

type ActivityController struct {
	activities *services.ActivityService
}

func NewActivityController(activities *services.ActivityService) *ActivityController {
	return &ActivityController{activities: activities}
}

// exercisePayload accepts the loosely typed exercise rows the app
// submits: numeric fields may arrive as strings.
type exercisePayload struct {
	Name   string      `json:"name"`
	Sets   interface{} `json:"sets"`
	Reps   interface{} `json:"reps"`
	Weight interface{} `json:"weight"`
}

func (p exercisePayload) toModel() models.Exercise {
	return models.Exercise{
		Name:   p.Name,
		Sets:   int(services.ParseAmount(p.Sets)),
		Reps:   int(services.ParseAmount(p.Reps)),
		Weight: services.ParseAmount(p.Weight),
	}
}

// Log handles POST /activities.
func (c *ActivityController) Log(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	var req struct {
		SportID     string            `json:"sport_id" binding:"required"`
		Duration    int               `json:"duration" binding:"required,gt=0"`
		Distance    interface{}       `json:"distance"`
		Exercises   []exercisePayload `json:"exercises"`
		RoutineName string            `json:"routine_name"`
		PhotoURL    string            `json:"photo_url"`
		Date        string            `json:"date"` // RFC 3339 or 2006-01-02
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request body: "+err.Error())
		return
	}

	exercises := make([]models.Exercise, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		exercises = append(exercises, ex.toModel())
	}

	in := services.LogActivityInput{
		SportID:     req.SportID,
		Duration:    req.Duration,
		Distance:    services.ParseAmount(req.Distance),
		Exercises:   exercises,
		RoutineName: req.RoutineName,
		PhotoURL:    req.PhotoURL,
		OccurredAt:  parseActivityDate(req.Date),
	}

	activity, err := c.activities.Log(ctx.Request.Context(), userID, in)
	var aggErr *services.AggregateUpdateError
	switch {
	case err == nil:
		utils.Success(ctx, gin.H{"activity": activity, "points_pending": false})
	case errors.As(err, &aggErr):
		// The activity is saved; some aggregates lag until the repair
		// loop catches up.
		utils.Success(ctx, gin.H{"activity": activity, "points_pending": true})
	default:
		respondServiceError(ctx, err, 50010)
	}
}

// Edit handles PUT /activities/:id.
func (c *ActivityController) Edit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	activityID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid activity id")
		return
	}

	var req struct {
		Duration int    `json:"duration"`
		Details  string `json:"details"`
		PhotoURL string `json:"photo_url"`
		Date     string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request body: "+err.Error())
		return
	}

	activity, err := c.activities.Edit(ctx.Request.Context(), userID, uint(activityID), services.EditActivityInput{
		Duration:   req.Duration,
		Details:    req.Details,
		PhotoURL:   req.PhotoURL,
		OccurredAt: parseActivityDate(req.Date),
	})
	if err != nil {
		respondServiceError(ctx, err, 50011)
		return
	}
	utils.Success(ctx, activity)
}

// Delete handles DELETE /activities/:id.
func (c *ActivityController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	activityID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid activity id")
		return
	}

	err = c.activities.Delete(ctx.Request.Context(), userID, uint(activityID))
	var aggErr *services.AggregateUpdateError
	switch {
	case err == nil:
		utils.Success(ctx, gin.H{"points_pending": false})
	case errors.As(err, &aggErr):
		utils.Success(ctx, gin.H{"points_pending": true})
	default:
		respondServiceError(ctx, err, 50012)
	}
}

// Feed handles GET /activities: the recent shared feed across users.
func (c *ActivityController) Feed(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(config.Get().FeedLimit)))
	activities, err := c.activities.Recent(limit)
	if err != nil {
		respondServiceError(ctx, err, 50013)
		return
	}
	utils.Success(ctx, activities)
}

// Mine handles GET /users/me/activities.
func (c *ActivityController) Mine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	page, pageSize := parsePagination(ctx)
	activities, total, err := c.activities.ForUser(userID, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err, 50014)
		return
	}
	utils.Success(ctx, gin.H{
		"activities": activities,
		"total":      total,
		"page":       page,
		"page_size":  pageSize,
	})
}

// UploadPhoto handles POST /upload: stores a workout photo under a
// random name and returns its public URL.
func (c *ActivityController) UploadPhoto(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "missing photo file")
		return
	}
	if file.Size > 8<<20 {
		utils.Error(ctx, http.StatusBadRequest, 40013, "photo exceeds 8MB limit")
		return
	}

	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40014, "unsupported file type")
		return
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dst := filepath.Join("static", "uploads", name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorw("photo upload failed", "error", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "could not store photo")
		return
	}
	utils.Success(ctx, gin.H{"url": "/static/uploads/" + name})
}

// parseActivityDate accepts RFC 3339 timestamps or bare dates; an
// empty or malformed value reads as zero and defaults to now.
func parseActivityDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}
