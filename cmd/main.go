package main

import (
	"os"

	"github.com/accuknox/cspm-mcp/cmd/cspmmcp"
	"github.com/accuknox/cspm-mcp/pkg/utils"
)

func main() {
	// Initialize logger
	logger := utils.NewLogger()

	// Create and execute root command
	rootCmd := cspmmcp.NewRootCommand(logger)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
}
