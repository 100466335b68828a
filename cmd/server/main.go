// Package main implements the entry point for the taskrelay server, which
// runs long-lived content-generation tasks asynchronously and reports each
// result to a caller-supplied webhook URL.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Load a local .env if present; real deployments rely on the
	// environment directly.
	_ = godotenv.Load()

	app, err := initializeApp(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
