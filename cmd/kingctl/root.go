package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sitesmith/internal/bootstrap"
	"sitesmith/internal/config"
	"sitesmith/internal/logger"
)

// opener builds the full application, store included. Catalog commands go
// through cli.Catalog instead and never call it.
type opener func(ctx context.Context, logLevel string) (*bootstrap.App, error)

func openFromEnv(ctx context.Context, logLevel string) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNoDatabaseURL) {
		return nil, err
	}
	lg, err := logger.New(logLevel, false)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, lg, nil)
}

type cli struct {
	open     opener
	logLevel string
	app      *bootstrap.App
	catalog  *bootstrap.Catalog
}

// Catalog returns the industry catalog and templates without opening a store.
func (c *cli) Catalog() (*bootstrap.Catalog, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}
	if c.app != nil {
		c.catalog = &bootstrap.Catalog{Industries: c.app.Industries, Templates: c.app.Templates}
		return c.catalog, nil
	}
	lg, err := logger.New(c.logLevel, false)
	if err != nil {
		return nil, err
	}
	cat, err := bootstrap.NewCatalog(lg, nil)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	c.catalog = cat
	return cat, nil
}

func (c *cli) App(cmd *cobra.Command) (*bootstrap.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := c.open(cmd.Context(), c.logLevel)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	c.app = app
	return app, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

// newRootCmd returns the command tree and a cleanup func releasing whatever
// the commands opened.
func newRootCmd(open opener) (*cobra.Command, func()) {
	c := &cli{open: open}
	root := &cobra.Command{
		Use:           "kingctl",
		Short:         "Inspect industries and templates, manage King forensic profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newIndustriesCmd(c),
		newTemplatesCmd(c),
		newProfilesCmd(c),
		newMigrateCmd(),
	)
	return root, c.close
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
