package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	formtags "github.com/goliatone/go-formtags"
	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/config"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/openapi"
	"github.com/goliatone/go-formtags/pkg/render"
	"github.com/goliatone/go-formtags/pkg/render/template/pongo"
)

// formSource selects a form fixture or an OpenAPI operation.
type formSource struct {
	form      string
	document  string
	operation string
}

func (s *formSource) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&s.form, "form", "f", "", "form fixture (YAML or JSON)")
	flags.StringVar(&s.document, "openapi", "", "OpenAPI document path or URL")
	flags.StringVar(&s.operation, "operation", "", "operation whose request body becomes the form")
}

func (s formSource) load(ctx context.Context) (model.Form, error) {
	switch {
	case s.form != "" && s.document != "":
		return model.Form{}, errors.New("--form and --openapi are mutually exclusive")
	case s.form != "":
		return model.LoadForm(s.form)
	case s.document != "":
		if s.operation == "" {
			return model.Form{}, s.missingOperation(ctx)
		}
		return openapi.LoadForm(ctx, s.document, s.operation)
	default:
		return model.Form{}, errors.New("one of --form or --openapi is required")
	}
}

func (s formSource) missingOperation(ctx context.Context) error {
	src, err := openapi.ParseSource(s.document)
	if err != nil {
		return err
	}
	data, err := openapi.NewLoader(openapi.WithHTTPFallback(0)).Load(ctx, src)
	if err != nil {
		return err
	}
	ops, err := openapi.Operations(ctx, data)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	return fmt.Errorf("--operation is required (available: %s)", strings.Join(ids, ", "))
}

func newRegistry(cfg *config.Config, assignOptions []assign.Option) (*render.Registry, *pongo.Engine, error) {
	return formtags.NewRegistry(
		formtags.WithTemplatesDir(cfg.Templates.Dir),
		formtags.WithExtension(cfg.Templates.Extension),
		formtags.WithAssignOptions(assignOptions...),
	)
}
