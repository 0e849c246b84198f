// Command generate-form-fixture snapshots the form built from an OpenAPI
// operation as a YAML fixture the CLI and preview server can load.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/openapi"
	"github.com/goliatone/go-formtags/pkg/render"
)

const snapshotRendererName = "form-fixture-snapshot"

type snapshotRenderer struct {
	path string
}

func (r *snapshotRenderer) Name() string {
	return snapshotRendererName
}

func (r *snapshotRenderer) ContentType() string {
	return "application/yaml"
}

func (r *snapshotRenderer) Render(_ context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	payload, err := yaml.Marshal(render.Prepare(form, opts))
	if err != nil {
		return nil, err
	}
	if r.path == "" {
		return payload, nil
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return nil, err
	}
	return payload, nil
}

func main() {
	var (
		documentPath = flag.String("openapi", "examples/fixtures/users.yaml", "OpenAPI document path or URL")
		operationID  = flag.String("operation", "createUser", "operation ID to snapshot")
		outputPath   = flag.String("output", "", "output path for the fixture (stdout if empty)")
	)
	flag.Parse()

	ctx := context.Background()

	registry := render.NewRegistry()
	registry.MustRegister(&snapshotRenderer{path: *outputPath})

	form, err := openapi.LoadForm(ctx, *documentPath, *operationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load form: %v\n", err)
		os.Exit(1)
	}

	payload, err := registry.MustGet(snapshotRendererName).Render(ctx, form, render.RenderOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to snapshot form: %v\n", err)
		os.Exit(1)
	}

	if *outputPath == "" {
		os.Stdout.Write(payload)
		return
	}
	fmt.Printf("Wrote form fixture to %s\n", *outputPath)
}
