package main

import (
	"log"

	"github.com/kartikey004/resume-parser-ai/internal/bootstrap"
	"github.com/kartikey004/resume-parser-ai/internal/shared/config"
	"github.com/kartikey004/resume-parser-ai/internal/shared/server"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg, bootstrap.Options{
		WithRouter: true,
		DBOptions:  db.DefaultServerOptions(),
	})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
