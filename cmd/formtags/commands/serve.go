package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtags/internal/preview"
	"github.com/goliatone/go-formtags/pkg/logging"
	"github.com/goliatone/go-formtags/pkg/renderers/vanilla"
)

func newServeCmd(state *appState) *cobra.Command {
	var (
		addr         string
		templatesDir string
		formsDir     string
		templateName string
		rendererName string
		watch        bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve form fixtures through a live preview",
		Long: `serve renders every fixture in the forms directory under /forms/:name.
POSTing to the same path re-renders the form with the submitted values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := state.cfg
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("forms") {
				cfg.Server.Forms = formsDir
			}
			if flags.Changed("templates") {
				cfg.Templates.Dir = templatesDir
			}
			if flags.Changed("renderer") {
				cfg.Templates.Renderer = rendererName
			}
			if flags.Changed("watch") {
				cfg.Server.Watch = watch
			}

			if info, err := os.Stat(cfg.Server.Forms); err != nil || !info.IsDir() {
				return fmt.Errorf("forms directory %q not found", cfg.Server.Forms)
			}

			assignOptions, err := cfg.Matching.Options()
			if err != nil {
				return err
			}
			registry, engine, err := newRegistry(cfg, assignOptions)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(cfg.Templates.Renderer)
			if err != nil {
				return err
			}

			srv, err := preview.New(preview.Options{
				FormsDir: cfg.Server.Forms,
				Renderer: renderer,
				Template: templateName,
				Assets:   vanilla.AssetsFS(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.Watch {
				if strings.TrimSpace(cfg.Templates.Dir) == "" {
					log.Warn().Msg("--watch has no effect without a templates directory")
				} else {
					watcher, err := preview.Watch(ctx, []string{cfg.Templates.Dir}, preview.DefaultDebounce, logging.GetLogger("formtags.watch"), engine.Reset)
					if err != nil {
						return fmt.Errorf("watch templates: %w", err)
					}
					defer watcher.Close()
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s/forms\n", cfg.Server.Forms, cfg.Server.Addr)
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8383)")
	flags.StringVar(&formsDir, "forms", "", "directory of form fixtures (default from config, ./forms)")
	flags.StringVar(&templatesDir, "templates", "", "directory searched for templates before the built-in ones")
	flags.StringVar(&templateName, "template", "", "template name passed to the renderer")
	flags.StringVarP(&rendererName, "renderer", "r", "", "built-in renderer: vanilla or plain")
	flags.BoolVarP(&watch, "watch", "w", false, "reload templates when files change")
	return cmd
}
