package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
	"github.com/goliatone/go-formtags/pkg/render/template/pongo"
	"github.com/goliatone/go-formtags/pkg/renderers/vanilla"
)

func newRenderCmd(state *appState) *cobra.Command {
	var (
		src          formSource
		templatePath string
		rendererName string
		valuesPath   string
		outputPath   string
		locale       string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a form to HTML",
		Example: `  formtags render --form contact.yaml
  formtags render --form contact.yaml --template layouts/contact.tpl --values posted.yaml
  formtags render --openapi api.yaml --operation createUser --renderer plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := state.cfg

			assignOptions, err := cfg.Matching.Options()
			if err != nil {
				return err
			}

			form, err := src.load(ctx)
			if err != nil {
				return err
			}
			values, err := model.LoadValues(valuesPath)
			if err != nil {
				return err
			}
			opts := render.RenderOptions{Values: values, Locale: locale}

			var renderer render.Renderer
			if templatePath != "" {
				engine, err := pongo.New(
					pongo.WithBaseDir(filepath.Dir(templatePath)),
					pongo.WithFS(vanilla.TemplatesFS()),
					pongo.WithExtension(filepath.Ext(templatePath)),
					pongo.WithAssignOptions(assignOptions...),
				)
				if err != nil {
					return err
				}
				if renderer, err = vanilla.New(vanilla.WithTemplateRenderer(engine)); err != nil {
					return err
				}
				opts.Template = filepath.Base(templatePath)
			} else {
				registry, _, err := newRegistry(cfg, assignOptions)
				if err != nil {
					return err
				}
				name := strings.TrimSpace(rendererName)
				if name == "" {
					name = cfg.Templates.Renderer
				}
				if renderer, err = registry.Get(name); err != nil {
					return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.List(), ", "))
				}
			}

			out, err := renderer.Render(ctx, form, opts)
			if err != nil {
				return err
			}

			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(outputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Info().Str("form", form.Name).Str("output", outputPath).Msg("Form written")
			return nil
		},
	}

	src.bind(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&templatePath, "template", "t", "", "template file rendered with the form tags")
	flags.StringVarP(&rendererName, "renderer", "r", "", "built-in renderer: vanilla or plain")
	flags.StringVar(&valuesPath, "values", "", "YAML or JSON file of field values")
	flags.StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&locale, "locale", "", "locale passed to translated labels")
	return cmd
}
