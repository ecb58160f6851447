package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ledgerloom/statement-combiner/internal/api"
	"github.com/ledgerloom/statement-combiner/internal/logger"
)

func main() {
	addrFlag := flag.String("addr", ":8080", "Listen address")
	configDirFlag := flag.String("config-dir", ".", "Directory holding the in/, out/ and ren/ flavour trees")
	logLevelFlag := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	logFileFlag := flag.String("logfile", "", "Write logs to this file instead of the console")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Serve statement combining over HTTP.

Endpoints:
  GET  /api/health   liveness probe
  POST /api/combine  multipart statement files in, combined CSV per account out

Usage:
  combine-server [flags]

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	log, err := logger.New(*logLevelFlag, *logFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:   "combine-server",
		BodyLimit: 64 << 20,
	})
	app.Use(recover.New())

	handler := &api.Handler{ConfigDir: *configDirFlag, Log: log}
	handler.Register(app)

	log.Info().Str("addr", *addrFlag).Msg("listening")
	if err := app.Listen(*addrFlag); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
