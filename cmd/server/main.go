package main

import (
	"github.com/rs/zerolog/log"

	"hrdocs/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
