// Command archytas draws Archytas' construction for the Delian problem:
// figure scripts to SVG, the swept solids to mesh JSON, and the solving
// angle.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli holds what the persistent flags resolve to.
type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
	app    *App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "archytas",
		Short:        "Archytas' duplication of the cube: figures, meshes and the solving angle",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML settings file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(c.renderCmd(), c.meshCmd(), c.solveCmd(), c.configCmd())
	return root
}

func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	c.app, err = NewApp(cfg, c.logger)
	return err
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func (c *cli) renderCmd() *cobra.Command {
	var (
		outDir  string
		dark    bool
		watchIt bool
	)
	cmd := &cobra.Command{
		Use:   "render SCRIPT",
		Short: "Evaluate a figure script and write one SVG file per figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dark") {
				c.app.Theme().SetDark(dark)
			}
			script := args[0]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			err := c.renderScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), script, outDir)
			if !watchIt {
				return err
			}
			return watch(cmd.Context(), script, c.logger, func() {
				// Errors were already reported; keep watching.
				_ = c.renderScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), script, outDir)
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&dark, "dark", false, "use the dark palette")
	cmd.Flags().BoolVar(&watchIt, "watch", false, "re-render whenever the script changes")
	return cmd
}

func (c *cli) renderScript(stdout, stderr io.Writer, script, outDir string) error {
	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}
	res := c.app.Evaluate(string(source))
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "%s: warning: figure %s: %s\n", script, w.Figure, w.Message)
	}
	for _, e := range res.Errors {
		if e.Line > 0 {
			fmt.Fprintf(stderr, "%s:%d:%d: %s\n", script, e.Line, e.Col, e.Message)
		} else {
			fmt.Fprintf(stderr, "%s: %s\n", script, e.Message)
		}
	}
	for _, f := range res.Figures {
		path := filepath.Join(outDir, fileName(f.Name)+".svg")
		if err := os.WriteFile(path, []byte(f.SVG), 0o644); err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%s: %d error(s)", script, len(res.Errors))
	}
	return nil
}

// fileName keeps letters, digits, dots, dashes and underscores.
func fileName(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if strings.Trim(s, "._") == "" {
		return "figure"
	}
	return s
}

// watch calls run each time path is written, created or renamed into
// place, until ctx is done. The directory is watched because editors
// often save by replacing the file.
func watch(ctx context.Context, path string, logger *slog.Logger, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)
	logger.Info("watching", slog.String("path", target))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Debug("script changed", slog.String("op", ev.Op.String()))
				run()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", slog.String("error", err.Error()))
		}
	}
}

// ---------------------------------------------------------------------------
// mesh
// ---------------------------------------------------------------------------

func (c *cli) meshCmd() *cobra.Command {
	var (
		angle     float64
		reference bool
		cells     int
		out       string
	)
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Write the construction solids at one angle as mesh JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("angle") {
				angle = c.app.Solution().AngleOAPDeg
			}
			if !(angle >= 0 && angle <= 90) {
				return fmt.Errorf("angle %g° must be in [0°, 90°]", angle)
			}
			c.app.SetAngleOAP(angle)
			scene := c.app.Scene()
			if reference {
				ref, err := c.app.ReferenceMeshes(cells)
				if err != nil {
					return err
				}
				scene.Reference = ref
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(scene)
		},
	}
	cmd.Flags().Float64Var(&angle, "angle", 0, "angleOAP in degrees (default: the solving angle)")
	cmd.Flags().BoolVar(&reference, "reference", false, "add marching-cubes meshes of the exact solids")
	cmd.Flags().IntVar(&cells, "cells", 0, "marching-cubes resolution for --reference (0 selects the default)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file")
	return cmd
}

// ---------------------------------------------------------------------------
// solve
// ---------------------------------------------------------------------------

func (c *cli) solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "Print the solving angle and the two mean proportionals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sol := c.app.Solution()
			c.app.SetAngleOAP(sol.AngleOAPDeg)
			m := c.cfg.Model
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "diameter  %g\n", m.Diameter)
			fmt.Fprintf(w, "ratio     %g\n", m.Ratio)
			fmt.Fprintf(w, "angleOAP  %.6f°\n", sol.AngleOAPDeg)
			fmt.Fprintf(w, "OP        %.9f\n", sol.OP)
			fmt.Fprintf(w, "OM        %.9f\n", sol.OM)
			fmt.Fprintf(w, "residual  %.3g\n", c.app.Residual())
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.cfg.Write(cmd.OutOrStdout())
		},
	}
}
