package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/unpacker/pkg/commands"
	"github.com/beam-cloud/unpacker/pkg/unpacker"
)

const defaultLogLevel = "info"

func main() {
	// Setup logging
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(console)

	var logFile io.Closer
	if path := getEnvString("UNPACKER_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unable to open log file %s: %v\n", path, err)
			os.Exit(1)
		}
		logFile = f
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	}

	if err := unpacker.SetLogLevel(getEnvString("UNPACKER_LOG_LEVEL", defaultLogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err := commands.NewRootCmd().Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
