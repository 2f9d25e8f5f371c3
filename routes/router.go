package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/config"
	"github.com/gymratapp/gymrat-server/controllers"
	"github.com/gymratapp/gymrat-server/middleware"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

// SetupRouter wires middleware, services and routes into a gin engine.
func SetupRouter(db *gorm.DB, ledger *services.Ledger) *gin.Engine {
	cfg := config.Get()

	switch cfg.GinMode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	accessLogger, err := utils.NewRollingFileLogger(
		cfg.GinPath, cfg.LogLevel,
		cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress,
	)
	if err != nil {
		accessLogger = utils.Logger
	}
	if accessLogger != nil {
		r.Use(utils.Ginzap(accessLogger, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(accessLogger, true))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(utils.RequestMetrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	routines := services.NewRoutineService(db)
	activities := services.NewActivityService(db, ledger, routines)
	leagues := services.NewLeagueService(db)

	activityCtl := controllers.NewActivityController(activities)
	leagueCtl := controllers.NewLeagueController(leagues)
	boardCtl := controllers.NewLeaderboardController(db, leagues)
	routineCtl := controllers.NewRoutineController(routines)
	profileCtl := controllers.NewProfileController(db)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/static", "./static")

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	{
		api.POST("/activities", activityCtl.Log)
		api.PUT("/activities/:id", activityCtl.Edit)
		api.DELETE("/activities/:id", activityCtl.Delete)
		api.GET("/activities", activityCtl.Feed)
		api.GET("/users/me/activities", activityCtl.Mine)
		api.POST("/upload", activityCtl.UploadPhoto)

		api.POST("/leagues", leagueCtl.Create)
		api.POST("/leagues/join", leagueCtl.JoinByCode)
		api.POST("/leagues/:id/join", leagueCtl.JoinPublic)
		api.PUT("/leagues/:id", leagueCtl.Update)
		api.DELETE("/leagues/:id", leagueCtl.Delete)
		api.GET("/leagues/mine", leagueCtl.Mine)
		api.GET("/leagues/public", leagueCtl.Public)

		api.GET("/leaderboard/global", boardCtl.Global)
		api.GET("/leagues/:id/leaderboard", boardCtl.ForLeague)

		api.GET("/routines", routineCtl.List)
		api.GET("/routines/:id", routineCtl.Get)

		api.GET("/users/me", profileCtl.Me)
		api.GET("/users/:id", profileCtl.Get)
		api.PATCH("/profile", profileCtl.Update)
	}

	r.NoRoute(func(ctx *gin.Context) {
		if len(ctx.Request.URL.Path) >= 4 && ctx.Request.URL.Path[:4] == "/api" {
			utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
