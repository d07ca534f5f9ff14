// cmd/keeper/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/scholarship-escrow/internal/config"
	"github.com/javajoker/scholarship-escrow/internal/keeper"
	"github.com/javajoker/scholarship-escrow/internal/logging"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	logging.Setup(cfg.Logging)

	addr, err := models.HexToAddress(cfg.Keeper.Address)
	if err != nil || addr.IsZero() {
		logrus.Fatal("KEEPER_ADDRESS must be a non-zero address")
	}

	// The keeper signs its own token with the shared secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	token, err := utils.GenerateJWT(addr, 365*24*time.Hour)
	if err != nil {
		logrus.Fatal("Failed to sign keeper token: ", err)
	}

	interval := time.Duration(cfg.Keeper.Interval) * time.Second
	client := keeper.NewClient(cfg.Keeper.APIURL, token, &http.Client{Timeout: 30 * time.Second})
	runner := keeper.NewRunner(client, interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"api":      cfg.Keeper.APIURL,
		"keeper":   addr.Hex(),
		"interval": interval.String(),
	}).Info("Keeper started")

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		logrus.Fatal("Keeper stopped: ", err)
	}
	logrus.Info("Keeper exited")
}
