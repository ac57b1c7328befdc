package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/asesorix/modelo111/internal/adapters/m111"
	sqliteadapter "github.com/asesorix/modelo111/internal/adapters/sqlite"
	"github.com/asesorix/modelo111/internal/handlers"
	"github.com/asesorix/modelo111/internal/report"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = "modelo111.db"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	repo, err := sqliteadapter.New(dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	svc := report.NewService(repo)
	h := handlers.New(repo, svc, m111.New())

	log.Printf("Modelo 111 generator running on http://localhost:%s", port)
	log.Printf("Database: %s", dsn)
	if err := http.ListenAndServe(":"+port, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
