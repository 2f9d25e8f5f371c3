package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/utils"
)

type ProfileController struct {
	db *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

// Me handles GET /users/me.
func (c *ProfileController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	var user models.User
	err := c.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if err != nil {
		respondServiceError(ctx, err, 50050)
		return
	}
	utils.Success(ctx, user)
}

// Get handles GET /users/:id: a public profile.
func (c *ProfileController) Get(ctx *gin.Context) {
	targetID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid user id")
		return
	}

	var user models.User
	err = c.db.First(&user, uint(targetID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if err != nil {
		respondServiceError(ctx, err, 50051)
		return
	}
	utils.Success(ctx, user)
}

// Update handles PATCH /profile. TotalPoints is not editable here: the
// ledger is the only writer of point aggregates.
func (c *ProfileController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	var req struct {
		Name   string   `json:"name"`
		Avatar string   `json:"avatar"`
		Bio    string   `json:"bio"`
		Weight *float64 `json:"weight"`
		Height *int     `json:"height"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = utils.SanitizePlain(req.Name)
	}
	if req.Avatar != "" {
		updates["avatar"] = utils.SanitizePlain(req.Avatar)
	}
	if req.Bio != "" {
		updates["bio"] = utils.SanitizePlain(req.Bio)
	}
	if req.Weight != nil && *req.Weight > 0 {
		updates["weight"] = *req.Weight
	}
	if req.Height != nil && *req.Height > 0 {
		updates["height"] = *req.Height
	}

	if len(updates) > 0 {
		if err := c.db.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(updates).Error; err != nil {
			respondServiceError(ctx, err, 50052)
			return
		}
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		respondServiceError(ctx, err, 50052)
		return
	}
	utils.Success(ctx, user)
}
