package main

import (
	"os"

	"go.uber.org/zap"

	"nurseryml/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	dir := os.Getenv("MODEL_DIR")
	if dir == "" {
		dir = "Models"
	}
	loaded, err := loadModels(dir, logger)
	if err != nil {
		logger.Fatal("load models", zap.String("dir", dir), zap.Error(err))
	}
	s := &server{
		models:    loaded,
		apiKey:    os.Getenv("API_KEY"),
		curvePath: os.Getenv("CURVE_CSV"),
		log:       logger,
	}
	if s.curvePath == "" {
		s.curvePath = "Models/learning_curve.csv"
	}
	s.defaultModel = os.Getenv("MODEL_NAME")
	if names := s.names(); s.defaultModel == "" && len(names) > 0 {
		s.defaultModel = names[0]
	}
	if len(loaded) == 0 {
		logger.Warn("no models found, run a classifier command first", zap.String("dir", dir))
	}
	logger.Info("models loaded", zap.Strings("models", s.names()), zap.String("default", s.defaultModel))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := newRouter(s).Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
