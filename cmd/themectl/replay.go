package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"storefront-theme/internal/app"
	"storefront-theme/internal/dom"
	"storefront-theme/internal/editor"
	"storefront-theme/internal/theme"
	"storefront-theme/pkg/logger"
)

type replayOptions struct {
	pageURL string
	cookies bool
	metrics bool
	quiet   bool
}

func newReplayCmd(root *rootFlags) *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay [page] [script.yaml]",
		Short: "Boot a page and replay an editor session against it",
		Long: "Parses the page (a file path, or a template name when --theme is set), " +
			"boots its sections and replays the optional YAML editor script. " +
			"Given only a script, the page it names is used. " +
			"The resulting page is written to stdout.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.pageURL, "url", "", "URL the page is served from; its fragment sets initial focus")
	cmd.Flags().BoolVar(&opts.cookies, "cookies", true, "Treat the browser as accepting cookies")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", root.cfg.EnableMetrics, "Print section metrics after the page")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the resulting page")

	return cmd
}

func runReplay(cmd *cobra.Command, root *rootFlags, opts *replayOptions, args []string) error {
	th, err := loadTheme(root)
	if err != nil {
		return err
	}

	pageArg, scriptPath := args[0], ""
	switch {
	case len(args) == 2:
		scriptPath = args[1]
	case isScript(args[0]):
		pageArg, scriptPath = "", args[0]
	}

	var script *editor.Script
	if scriptPath != "" {
		if script, err = editor.Load(scriptPath); err != nil {
			return err
		}
	}
	if pageArg == "" {
		if script.Page == "" {
			return fmt.Errorf("script %s names no page", scriptPath)
		}
		pageArg = scriptPage(scriptPath, script.Page)
	}

	pagePath, err := resolvePage(th, pageArg)
	if err != nil {
		return err
	}

	file, err := os.Open(pagePath)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	doc, err := dom.Parse(file)
	file.Close()
	if err != nil {
		return err
	}

	application, err := app.New(root.cfg, doc, app.Options{
		Theme:          th,
		PageURL:        opts.pageURL,
		CookiesEnabled: opts.cookies,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := replay(ctx, application, script)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "Failed to shut down page", nil)
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if !opts.quiet {
		if err := doc.Render(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	errOut := cmd.ErrOrStderr()
	for _, ev := range application.Events() {
		fmt.Fprintf(errOut, "event: %s %s %d\n", ev.SectionID, ev.Name, ev.VariantID)
	}
	for _, u := range application.History() {
		fmt.Fprintf(errOut, "history: %s\n", u)
	}
	if opts.metrics {
		return writeMetrics(out, prometheus.DefaultGatherer)
	}
	return nil
}

func replay(ctx context.Context, application *app.Application, script *editor.Script) error {
	if err := application.Boot(ctx); err != nil {
		return fmt.Errorf("boot page: %w", err)
	}
	if script == nil {
		return nil
	}
	n, err := editor.Replay(ctx, application, script)
	logger.Info("Editor script replayed", map[string]interface{}{
		"script": script.Name,
		"steps":  n,
	})
	return err
}

func isScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// scriptPage resolves a page file named by a script relative to the script.
// Template names and absolute paths are returned unchanged.
func scriptPage(scriptPath, page string) string {
	if filepath.IsAbs(page) {
		return page
	}
	candidate := filepath.Join(filepath.Dir(scriptPath), page)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return page
}

func loadTheme(root *rootFlags) (*theme.Theme, error) {
	if root.themeDir == "" {
		return theme.Default(root.cfg), nil
	}
	return theme.Load(root.themeDir, root.cfg)
}

// resolvePage accepts a path to an HTML file or, failing that, a template
// name of the theme.
func resolvePage(th *theme.Theme, page string) (string, error) {
	if info, err := os.Stat(page); err == nil && !info.IsDir() {
		return page, nil
	}
	path, err := th.TemplatePath(page)
	if err != nil {
		if errors.Is(err, theme.ErrTemplateNotFound) {
			return "", fmt.Errorf("page %q is neither a file nor a theme template", page)
		}
		return "", err
	}
	return path, nil
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
