package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codecity/pkg/config"
	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/render/svg"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/server"
	"github.com/matzehuels/codecity/pkg/store"
)

// serveCommand creates the serve command exposing a scene over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		snapshot string
		labels   bool
		flags    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [source|scene.json]",
		Short: "Serve a laid-out scene over a read-only HTTP API",
		Long: `Serve a laid-out scene over a read-only HTTP API.

Endpoints:
  GET /healthz
  GET /api/scene              scene JSON
  GET /api/scene.svg          top-down site plan
  GET /api/pickables?depth=N&kind=file|directory
  GET /api/tooltip?path=a/b.go

The scene comes from a source, a scene JSON, or a stored snapshot
(--snapshot). The server stops on SIGINT or SIGTERM.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return c.runServe(cmd.Context(), source, snapshot, addr, labels, &flags)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "serve a stored snapshot by ID")
	cmd.Flags().BoolVar(&labels, "labels", false, "label buildings in the site plan")
	flags.register(cmd)

	return cmd
}

// runServe resolves the scene and blocks serving it until ctx is done.
func (c *CLI) runServe(ctx context.Context, source, snapshot, addr string, labels bool, flags *sourceFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var sc *scene.Scene
	switch {
	case snapshot != "" && source != "":
		return errs.New(errs.ErrCodeInvalidInput, "pass either a source or --snapshot, not both")
	case snapshot != "":
		sc, err = c.loadSnapshotScene(ctx, cfg.Store, snapshot)
	case source != "":
		var loaded *loadedScene
		if loaded, err = c.loadScene(ctx, source, flags); err == nil {
			sc = loaded.Scene
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "a source or --snapshot is required")
	}
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(loggerFromContext(ctx))}
	if labels {
		opts = append(opts, server.WithSVGOptions(svg.WithLabels()))
	}
	srv, err := server.New(sc, opts...)
	if err != nil {
		return err
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	printSuccess("Serving %d pickables", len(sc.Pickables()))
	fmt.Println("  " + StyleLink.Render("http://"+addr+"/api/scene"))
	return srv.ListenAndServe(ctx, addr)
}

// loadSnapshotScene loads and decodes a stored snapshot.
func (c *CLI) loadSnapshotScene(ctx context.Context, cfg config.Store, rawID string) (*scene.Scene, error) {
	id, err := store.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	snap, err := st.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded snapshot", "id", snap.ID, "name", snap.Name)
	return snap.Decode()
}
