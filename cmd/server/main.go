// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/auth"
	"github.com/jason-s-yu/cyberrange/internal/cache"
	"github.com/jason-s-yu/cyberrange/internal/classify"
	"github.com/jason-s-yu/cyberrange/internal/database"
	"github.com/jason-s-yu/cyberrange/internal/handlers"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Production deployments share the identity service's signing keys;
	// without them tokens minted elsewhere would never validate. Local runs
	// fall back to an ephemeral pair.
	privPath := os.Getenv("JWT_PRIVATE_KEY_PATH")
	pubPath := os.Getenv("JWT_PUBLIC_KEY_PATH")
	if privPath != "" && pubPath != "" {
		if err := auth.InitFromPath(privPath, pubPath); err != nil {
			logger.Fatalf("failed to load jwt keys: %v", err)
		}
	} else {
		auth.Init()
	}

	opts := sim.Options{}

	// Postgres holds the detection signature set; without it the built-in
	// defaults apply.
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("PG_HOST") != "" {
		database.ConnectDB()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		sigs, err := database.LoadSignatures(ctx)
		cancel()
		if err != nil {
			logger.Warnf("failed to load signatures from database, using defaults: %v", err)
		} else if len(sigs) > 0 {
			logger.Infof("loaded %d detection signatures from database", len(sigs))
			opts.Categorizer = classify.NewMatcher(sigs)
		}
	}

	// Redis receives the event audit queue; best effort.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, event records disabled: %v", err)
	} else {
		opts.Recorder = cache.EventRecorder{}
	}

	srv := handlers.NewServer(logger, opts)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Infof("simulation coordinator listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, srv.Routes()))
}
