package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/MrSnakeDoc/smartmark/internal/app"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "smartmark",
		Usage:   "Personal bookmarks with live sync across tabs and devices",
		Version: version.Version,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the PostgreSQL schema and exit",
				Action: migrate,
			},
			{
				Name:  "import",
				Usage: "Import a Homepage bookmarks.yaml or services.yaml file once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the Homepage YAML file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Owner user id, as shown by GET /api/me",
						Required: true,
					},
				},
				Action: importFile,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("❌ smartmark failed: %v", err)
	}
}

func setup() (*config.Config, logger.Logger) {
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, loggerClient := setup()
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, loggerClient := setup()
	defer func() { _ = loggerClient.Sync() }()

	return app.Migrate(ctx, cfg, loggerClient)
}

func importFile(ctx context.Context, cmd *cli.Command) error {
	cfg, loggerClient := setup()
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ImportFile(ctx, cmd.String("file"), cmd.String("user"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	out, _ := json.Marshal(res)
	fmt.Println(string(out))
	return nil
}
