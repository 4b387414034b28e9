package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/internal/app"
	"github.com/larkes/communities-api/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	logger := app.NewLogger(cfg)
	if err := app.Run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Fatal("app")
	}
}
