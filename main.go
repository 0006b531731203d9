package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/wickedwords/word-chain-bot/config"
	"github.com/wickedwords/word-chain-bot/database"
	"github.com/wickedwords/word-chain-bot/dictionary"
	"github.com/wickedwords/word-chain-bot/discord"
	"github.com/wickedwords/word-chain-bot/frequency"
	"github.com/wickedwords/word-chain-bot/game"
	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
	"github.com/wickedwords/word-chain-bot/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	logger := logging.NewLogger(cfg.LogLevel, os.Stdout)

	ctx := context.Background()

	// listen and serve for metrics server.
	server := metrics.SetupServer(cfg.MetricsAddr)
	go server.Run()

	// setup postgres connection, running migrations on the way up
	db, err := database.NewPostgres(cfg.PostgresURL, logger)
	if err != nil {
		log.Fatalln(err)
	}

	store := game.NewSQLStore(db)
	states := game.NewServerStateManager(store, logger)
	if err := states.Load(ctx); err != nil {
		log.Fatalln(err)
	}

	scores := frequency.NewSet(cfg.LanguagesDir, logger)
	resolver := dictionary.NewResolver(dictionary.NewClient(), logger)
	engine := game.NewEngine(states, store, resolver, nil, language.NewMatcher(), scores, cfg.SinglePlayer, logger)

	adminGuildID := ""
	if cfg.AdminGuildID != 0 {
		adminGuildID = strconv.FormatInt(cfg.AdminGuildID, 10)
	}
	session, err := discord.Setup(cfg.DiscordToken, adminGuildID, engine, states, db, resolver, logger)
	if err != nil {
		log.Fatalln(err)
	}
	// the role syncer needs the live session, so it is wired after connect
	engine.SetRoleSyncer(discord.NewRoleSyncer(session.Session, db, states, logger))

	logger.Info("bot is running", "single_player", cfg.SinglePlayer)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if session.Session != nil {
		if err := session.Session.Close(); err != nil {
			logger.Error("error closing discord session", "error", err.Error())
		}
	}
	db.Close()
}
