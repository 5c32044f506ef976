package main

import (
	"time"

	"github.com/cicc-pucmm/open-house-social-app-2026/config"
	"github.com/cicc-pucmm/open-house-social-app-2026/models"
	"github.com/cicc-pucmm/open-house-social-app-2026/routes"
	"github.com/cicc-pucmm/open-house-social-app-2026/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(models.All()...)

	store := utils.NewFileStore(db, cfg.UploadDir, cfg.UploadBaseURL)

	dispatcher := utils.NewDispatcher(db, utils.NewPushSender(cfg.PushGatewayURL))
	dispatcher.Start()
	defer dispatcher.Close()

	// Best-effort sweep of uploads never attached to a post
	utils.StartOrphanFileCleaner(db, store, 30*time.Minute, 24*time.Hour)

	r := routes.SetupRouter(db, store, dispatcher)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
