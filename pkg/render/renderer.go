package render

import (
	"context"

	"github.com/goliatone/go-formtags/pkg/model"
)

// Renderer converts a whole Form into a byte representation. Field level
// rendering goes through FieldRenderer; Renderer implementations decide the
// surrounding markup.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
