package main

import (
	"log"

	"github.com/accesspath/journey-backend-go/internal/api"
	"github.com/accesspath/journey-backend-go/internal/classifier"
	"github.com/accesspath/journey-backend-go/internal/config"
	"github.com/accesspath/journey-backend-go/internal/database"
	"github.com/accesspath/journey-backend-go/internal/handler"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
	"github.com/accesspath/journey-backend-go/internal/repository"
	"github.com/accesspath/journey-backend-go/internal/service"
	"github.com/accesspath/journey-backend-go/internal/transit"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	journeyRepo := repository.NewJourneyRepository(db)
	transitStore := transit.NewStore(db)

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.WindowDuration = cfg.WindowDuration
	pipelineCfg.MinWindowSamples = cfg.MinWindowSize
	pipelineCfg.MergeTolerance = cfg.MergeTolerance
	pipelineCfg.PipelineTimeout = cfg.PipelineTimeout
	pipelineCfg.Workers = cfg.WorkerCount
	pipelineCfg.Fusion.RadiusMeters = cfg.FusionRadiusMeters
	pipelineCfg.Fusion.TimeWindow = cfg.FusionTimeWindow
	pipelineCfg.Fusion.QueryTimeout = cfg.FusionQueryTimeout

	var feed pipeline.VehicleFinder
	if cfg.TransitEnabled {
		feed = transitStore
	} else {
		log.Printf("[Server] Transit fusion disabled, running sensor-only classification")
	}

	p := pipeline.New(pipelineCfg, journeyRepo, classifier.NewHeuristic(), feed)

	analysisSvc := service.NewAnalysisService(journeyRepo, p)
	analysisHandler := handler.NewAnalysisHandler(analysisSvc)
	transitHandler := handler.NewTransitHandler(transitStore)

	router := api.SetupRouter(analysisHandler, transitHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
