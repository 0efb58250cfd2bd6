package main

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/handler"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/server"
	"github.com/marine14f/geminipwa-sub000/internal/service"
	"github.com/marine14f/geminipwa-sub000/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	flags := config.BindFlags(pflag.CommandLine)
	pflag.Parse()

	log := logger.NewLogger("blobserver")
	log.Info().Str("build", models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).String()).Msg("starting blob server")

	cfg, err := config.GetBlobServerConfig(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	logger.SetLevel(cfg.LogLevel)

	log.Debug().Str("address", cfg.HTTPAddress).Str("dir", cfg.Dir).Bool("auth", cfg.Token != "").Msg("received configs")

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("error creating blob directory")
	}

	// the server stores keys verbatim and reserves nothing
	store, err := adapter.NewFSBlobStore(cfg.Dir, "", adapter.Keys{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating blob storage")
	}

	services := service.NewServices(store, log)

	handlers, err := handler.NewHandlers(services, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err := srv.RunServer(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
