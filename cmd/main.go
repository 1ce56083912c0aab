package main

import (
	"log"
	"os"

	"github.com/careline/hms-backend/internal/config"
)

func main() {
	config.LoadEnv()
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	router := config.ServerSetup()
	log.Printf("HTTP server is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
