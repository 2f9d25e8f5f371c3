package main

import (
	"log"
	"time"

	"github.com/gymratapp/gymrat-server/config"
	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/routes"
	"github.com/gymratapp/gymrat-server/services"
	"github.com/gymratapp/gymrat-server/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() {
		if utils.Logger != nil {
			_ = utils.Logger.Sync()
		}
	}()
	utils.InitMetrics()

	db := config.InitDatabase(
		&models.User{},
		&models.League{},
		&models.LeagueMember{},
		&models.Activity{},
		&models.PointEntry{},
		&models.Routine{},
	)

	ledger := services.NewLedger(
		db,
		cfg.LedgerMaxRetries,
		time.Duration(cfg.LedgerRetryBackoffMs)*time.Millisecond,
	)
	stopRepair := ledger.StartRepair(time.Duration(cfg.LedgerRepairIntervalSec) * time.Second)
	defer stopRepair()

	r := routes.SetupRouter(db, ledger)

	utils.Sugar.Infof("gymrat server listening on :%s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server exited with error: %v", err)
	}
}
