package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/optibridge/service/internal/auth"
	"github.com/optibridge/service/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory holding config.json",
		Value:   "./data",
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	app := &cli.App{
		Name:  "optibridge",
		Usage: "Optimise images to WebP and publish them to Cloudinary or R2",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"), false)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Transcode an image file and upload it",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
					&cli.StringFlag{
						Name:     "provider",
						Aliases:  []string{"p"},
						Usage:    "Upload provider (cloudinary or r2)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-width",
						Usage: "Width clamp; 0 uses the saved setting",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runUpload,
			},
			{
				Name:  "history",
				Usage: "Inspect upload history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List uploads, newest first",
						Flags:  []cli.Flag{newDBURLFlag()},
						Before: initDB,
						After:  closeDB,
						Action: runHistoryList,
					},
					{
						Name:      "delete",
						Usage:     "Delete a history record (the uploaded object is kept)",
						ArgsUsage: "<id>",
						Flags:     []cli.Flag{newDBURLFlag()},
						Before:    initDB,
						After:     closeDB,
						Action:    runHistoryDelete,
					},
				},
			},
			{
				Name:   "settings",
				Usage:  "Show saved settings with secrets masked",
				Flags:  []cli.Flag{newDataDirFlag()},
				Action: runSettingsShow,
			},
			{
				Name:  "token",
				Usage: "Issue a bearer token for the API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "secret",
						Usage:    "Signing secret",
						Required: true,
						EnvVars:  []string{"JWT_SECRET"},
					},
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Token subject",
						Value: "optibridge-client",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: auth.DefaultTokenTTL,
					},
				},
				Action: runToken,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
