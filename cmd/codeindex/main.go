package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/indexer"
	"github.com/standardbeagle/codeindex/internal/mcpsurface"
	"github.com/standardbeagle/codeindex/internal/markov"
	"github.com/standardbeagle/codeindex/internal/pathresolve"
	"github.com/standardbeagle/codeindex/internal/query"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/syncengine"
	"github.com/standardbeagle/codeindex/internal/watcher"
)

const version = "0.1.0"

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludes...)
	}
	return cfg, nil
}

// openAPI wires every component (storage, indexer, path resolver, sync
// engine) into one query.API, the shape every CLI command and the MCP
// surface consume identically.
func openAPI(cfg *config.Config) (*storage.Store, *query.API, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	idx, err := indexer.New(cfg, store)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("build indexer: %w", err)
	}
	resolver := pathresolve.New(cfg.RootDirectory, store)
	syncEngine := syncengine.New(idx, cfg.RootDirectory, cfg)
	return store, query.New(store, resolver, cfg, syncEngine), nil
}

func main() {
	app := &cli.App{
		Name:    "codeindex",
		Usage:   "Persistent, incremental multi-language source-code index with an MCP tool surface",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Project root directory to index (defaults to cwd)"},
			&cli.StringSliceFlag{Name: "include", Usage: "Override include globs"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Additional exclude globs"},
		},
		Commands: []*cli.Command{
			{
				Name:  "index",
				Usage: "Run a full index of the project root and exit",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, api, err := openAPI(cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					summary, err := api.SyncIndex(context.Background(), nil, c.Bool("rebuild-chains"))
					if err != nil {
						return fmt.Errorf("sync index: %w", err)
					}
					return printJSON(summary)
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rebuild-chains", Usage: "Rebuild the Markov suggestion chains after indexing"},
				},
			},
			{
				Name:  "sync",
				Usage: "Reindex specific files (or the whole project if none given)",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, api, err := openAPI(cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					summary, err := api.SyncIndex(context.Background(), c.Args().Slice(), c.Bool("rebuild-chains"))
					if err != nil {
						return fmt.Errorf("sync: %w", err)
					}
					return printJSON(summary)
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rebuild-chains", Usage: "Rebuild the Markov suggestion chains after syncing"},
				},
			},
			{
				Name:  "rebuild-chains",
				Usage: "Rebuild all four Markov chains from the current index without reindexing",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := storage.Open(cfg.DatabasePath)
					if err != nil {
						return err
					}
					defer store.Close()

					ids, err := markov.RebuildAll(store, cfg.Markov)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"chainIds": ids})
				},
			},
			{
				Name:  "watch",
				Usage: "Watch the project root and sync the index incrementally as files change",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, api, err := openAPI(cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					log.Printf("running initial full index of %s", cfg.RootDirectory)
					if _, err := api.SyncIndex(context.Background(), nil, true); err != nil {
						return fmt.Errorf("initial sync: %w", err)
					}

					w, err := watcher.New(cfg)
					if err != nil {
						return fmt.Errorf("start watcher: %w", err)
					}
					if err := w.Start(); err != nil {
						return fmt.Errorf("start watcher: %w", err)
					}
					defer w.Stop()

					ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer cancel()

					log.Printf("watching %s (debounce %dms)", cfg.RootDirectory, cfg.WatchDebounceMs)
					for {
						select {
						case ev, ok := <-w.Events():
							if !ok {
								return nil
							}
							if _, err := api.SyncIndex(ctx, []string{ev.Path}, false); err != nil {
								log.Printf("sync %s: %v", ev.Path, err)
							}
						case <-ctx.Done():
							return nil
						}
					}
				},
			},
			{
				Name:  "mcp",
				Usage: "Start the MCP server over stdio",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, api, err := openAPI(cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					server := mcpsurface.NewServer(api, "codeindex-mcp-server", version)

					ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer cancel()

					log.Printf("starting MCP server over stdio for %s", cfg.RootDirectory)
					return server.Start(ctx)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
