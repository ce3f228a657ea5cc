package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmarques/obrafield/internal/client/cli"
	"github.com/dmarques/obrafield/internal/client/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(configDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "obrafield: %v\n", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "obrafield: %v\n", err)
		os.Exit(1)
	}
	runErr := app.Run(ctx, os.Args[1:])
	_ = app.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "obrafield: %v\n", runErr)
		os.Exit(1)
	}
}

// configDir is ~/.obrafield unless OBRAFIELD_CONFIG_DIR points elsewhere.
func configDir() string {
	if dir := os.Getenv("OBRAFIELD_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".obrafield"
	}
	return filepath.Join(home, ".obrafield")
}
