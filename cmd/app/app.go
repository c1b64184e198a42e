package main

import (
	"os"

	"github.com/swipestyle/go-backend/internal/app"
	config "github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/pkg/logger"
)

//	@title			SwipeStyle API
//	@version		1.0
//	@description	Рекомендательный сервис одежды: свайпы, подбор похожих вещей и сборка образов.
//	@BasePath		/api/v1
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
