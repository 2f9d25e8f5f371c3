package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

type RoutineController struct {
	routines *services.RoutineService
}

func NewRoutineController(routines *services.RoutineService) *RoutineController {
	return &RoutineController{routines: routines}
}

// List handles GET /routines: the caller's saved routines with their
// exercise lists.
func (c *RoutineController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	routines, exercises, err := c.routines.List(userID)
	if err != nil {
		respondServiceError(ctx, err, 50040)
		return
	}

	out := make([]gin.H, len(routines))
	for i := range routines {
		out[i] = gin.H{
			"id":         routines[i].ID,
			"name":       routines[i].Name,
			"exercises":  exercises[i],
			"updated_at": routines[i].UpdatedAt,
		}
	}
	utils.Success(ctx, out)
}

// Get handles GET /routines/:id.
func (c *RoutineController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	routineID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid routine id")
		return
	}

	routine, exercises, err := c.routines.Load(uint(routineID), userID)
	if err != nil {
		respondServiceError(ctx, err, 50041)
		return
	}
	utils.Success(ctx, gin.H{
		"id":         routine.ID,
		"name":       routine.Name,
		"exercises":  exercises,
		"updated_at": routine.UpdatedAt,
	})
}
