package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/interest"
)

func main() {
	_ = godotenv.Load()

	var addr, csvPath string
	flag.StringVar(&addr, "addr", ":8081", "Listen address")
	flag.StringVar(&csvPath, "csv", "data/interested_users.csv", "Path to the interest CSV file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	mux := http.NewServeMux()
	mux.Handle("/tools/log-interest", interest.Handler(interest.NewCSVLogger(csvPath)))

	logger.Info("interest tool listening", zap.String("addr", addr), zap.String("csv", csvPath))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
