package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/kozakura913/TwitchLiveDiscord/internal/app"
	"github.com/kozakura913/TwitchLiveDiscord/internal/config"
	"github.com/kozakura913/TwitchLiveDiscord/internal/discord"
	"github.com/kozakura913/TwitchLiveDiscord/internal/logging"
	"github.com/kozakura913/TwitchLiveDiscord/internal/platform/correlation"
	"github.com/kozakura913/TwitchLiveDiscord/internal/platform/version"
	"github.com/kozakura913/TwitchLiveDiscord/internal/state"
	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

func main() {
	envCfg, err := config.LoadEnv()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load environment: %v", err)
	}

	configPath := flag.String("config", envCfg.ConfigPath, "path to the JSON config file")
	statePath := flag.String("state", envCfg.StatePath, "path to the persisted state file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [username]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, config.ErrTemplateCreated) {
		fmt.Printf("created %s, fill in the Twitch credentials and Discord webhook URL\n", *configPath)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	login := flag.Arg(0)
	if login == "" {
		login = cfg.TargetUser
	}
	if err := cfg.Validate(login); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if envCfg.LogLevel != "" {
		level = envCfg.LogLevel
	}
	if envCfg.LogFormat != "" {
		format = envCfg.LogFormat
	}
	logging.InitLogger(level, format)

	ctx := correlation.WithRunID(context.Background(), correlation.NewRunID())
	slog.InfoContext(ctx, "Starting", "version", version.String(), "user", login)

	clock := clockwork.NewRealClock()
	runner := app.NewRunner(
		twitch.NewClient(cfg.ClientID, cfg.ClientSecret),
		state.NewFileStore(*statePath, clock),
		discord.NewWebhookClient(cfg.Discord),
		clock,
		login,
	)

	if err := runner.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "Run failed", "error", err)
		os.Exit(1)
	}
}
