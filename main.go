// @title Student Wellbeing Platform API
// @version 1.0
// @description Backend service for role-scoped student wellbeing records, analytics and retention.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"wellbeing_backend/internal/app"
	"wellbeing_backend/internal/config"
	"wellbeing_backend/pkg/configwatcher"
	"wellbeing_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// Hot-reload analytics thresholds on config edits.
	go configwatcher.WatchConfig(*configDir+"/config.yaml", application.ApplyConfig)

	application.Run()
}
