// Command crmctl runs operator tasks against the CRM database.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("crmctl failed")
		os.Exit(1)
	}
}
