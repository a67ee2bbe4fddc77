package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"catalog-service/config"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|up-by-one|up-to|down|down-to|redo|reset|status|version")
	version := flag.String("version", "", "target version for up-to and down-to")
	flag.Parse()

	if err := util.InitLogger(os.Getenv("ENV"), os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger().With(zap.String("cmd", *cmd))

	var args []string
	switch *cmd {
	case "up-to", "down-to":
		if *version == "" {
			fmt.Fprintf(os.Stderr, "missing -version for %s\n", *cmd)
			os.Exit(1)
		}
		args = append(args, *version)
	case "up", "up-by-one", "down", "redo", "reset", "status", "version":
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := store.NewStore(store.Options{URL: cfg.URL, MaxOpenConns: 1})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(context.Background(), *cmd, args...); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		db.Close()
		os.Exit(1)
	}
	logger.Info("Migration finished")
}
