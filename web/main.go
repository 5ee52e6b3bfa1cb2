package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	log.Logger = log.Output(console)

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	webServer := server.NewServer(*port, log.Logger, console)

	log.Info().Int("port", *port).Msgf("visit http://localhost:%d/api/scenes to list scenes", *port)
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("web server stopped")
	}
}
