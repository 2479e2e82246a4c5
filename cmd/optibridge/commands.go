package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/optibridge/service/internal/auth"
	"github.com/optibridge/service/internal/cache"
	"github.com/optibridge/service/internal/config"
	"github.com/optibridge/service/internal/db"
	"github.com/optibridge/service/internal/history"
	"github.com/optibridge/service/internal/upload"
)

type ctxKey string

const poolKey ctxKey = "pool"

func initDB(c *cli.Context) error {
	pool, err := db.Connect(c.Context, c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, poolKey, pool)
	return nil
}

func closeDB(c *cli.Context) error {
	if pool, ok := c.Context.Value(poolKey).(*pgxpool.Pool); ok && pool != nil {
		pool.Close()
	}
	return nil
}

func historyRepo(c *cli.Context) (*history.Repository, error) {
	pool, ok := c.Context.Value(poolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, errors.New("database connection not found in context")
	}
	return history.NewRepository(pool), nil
}

func runUpload(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing <file> argument", 2)
	}

	repo, err := historyRepo(c)
	if err != nil {
		return err
	}
	store, err := config.NewSettingsStore(c.String("data-dir"))
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return err
	}

	maxWidth := c.Int("max-width")
	if maxWidth <= 0 {
		maxWidth = settings.MaxWidth
	}

	svc := upload.NewService(cache.NewMemoryStore(), repo)
	processed, err := svc.Process(c.Context, upload.FromPath(path), maxWidth)
	if err != nil {
		return fmt.Errorf("process %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "processed %s: %dx%d, %s\n", path, processed.Width, processed.Height, processed.SizeInfo)

	res, err := svc.Upload(c.Context, processed.Handle, c.String("provider"), settings.Credentials())
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	fmt.Fprintln(c.App.Writer, res.URL)
	return nil
}

func runHistoryList(c *cli.Context) error {
	repo, err := historyRepo(c)
	if err != nil {
		return err
	}
	records, err := repo.List(c.Context)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tUPLOADED\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Provider, time.Unix(r.CreatedAt, 0).Format(time.RFC3339), r.URL)
	}
	return tw.Flush()
}

func runHistoryDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("missing <id> argument", 2)
	}
	repo, err := historyRepo(c)
	if err != nil {
		return err
	}
	if err := repo.Delete(c.Context, id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return cli.Exit(err.Error(), 1)
		}
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
	return nil
}

func runSettingsShow(c *cli.Context) error {
	store, err := config.NewSettingsStore(c.String("data-dir"))
	if err != nil {
		return err
	}
	s, err := store.Load()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Masked()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "settings file: %s\n", store.Path())
	return nil
}

func runToken(c *cli.Context) error {
	token, err := auth.IssueToken(c.String("secret"), c.String("subject"), c.Duration("ttl"), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func runMigrate(c *cli.Context) error {
	return db.Migrate(c.String("db-url"))
}
