package main

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-backbit/cmd"
	"github.com/deploymenttheory/go-backbit/internal/config"
	"github.com/deploymenttheory/go-backbit/internal/logger"
)

func main() {
	// Get app configuration file from environment if specified
	configFile := os.Getenv("BACKBIT_CONFIG")

	if err := config.Initialize(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cmd.InitLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	err := cmd.Execute()

	// Ensure logs are flushed before exit
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
