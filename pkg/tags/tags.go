package tags

import (
	"errors"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formtags/pkg/assign"
	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/model"
)

// AssignerKey is the context (or template set global) key holding the
// *assign.Assigner form tags use. Without one, assign.New() is used.
const AssignerKey = "formtags_assigner"

const (
	stateKey    = "__formtags_state"
	formKey     = "__formtags_form"
	fieldKey    = "__formtags_field"
	optgroupKey = "__formtags_optgroup"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register adds the tags and filters to pongo2. It is safe to call more than
// once.
func Register() error {
	registerOnce.Do(func() {
		tagParsers := map[string]pongo2.TagParser{
			"form":                parseForm,
			"field":               parseField,
			"if_field":            parseIfField,
			"field_choices":       parseFieldChoices,
			"field_choice_groups": parseFieldChoiceGroups,
			"hidden_fields":       parseHiddenFields,
		}
		for name, parser := range tagParsers {
			if err := pongo2.RegisterTag(name, parser); err != nil {
				registerErr = errors.Join(registerErr, err)
			}
		}
		for name, filter := range filterFuncs() {
			if pongo2.FilterExists(name) {
				continue
			}
			if err := pongo2.RegisterFilter(name, filter); err != nil {
				registerErr = errors.Join(registerErr, err)
			}
		}
	})
	return registerErr
}

// MustRegister panics when Register fails.
func MustRegister() {
	if err := Register(); err != nil {
		panic(err)
	}
}

// Cause returns the error a tag raised, unwrapping pongo2's error envelope.
func Cause(err error) error {
	for err != nil {
		var perr *pongo2.Error
		if !errors.As(err, &perr) || perr.OrigError == nil {
			return err
		}
		err = perr.OrigError
	}
	return err
}

// formState is the per-execution state of one form block.
type formState struct {
	form      model.Form
	rendering bool
	specs     []assign.Spec
	owners    []*fieldNode
	queues    map[*fieldNode][][]model.Field
	result    assign.Result
}

func stateFrom(ctx *pongo2.ExecutionContext) (*formState, bool) {
	state, ok := ctx.Private[stateKey].(*formState)
	return state, ok && state != nil
}

func assignerFrom(ctx *pongo2.ExecutionContext) *assign.Assigner {
	for _, scope := range []pongo2.Context{ctx.Private, ctx.Public} {
		if assigner, ok := scope[AssignerKey].(*assign.Assigner); ok && assigner != nil {
			return assigner
		}
	}
	return assign.New()
}

func outsideForm(tag string) error {
	return formerrors.Newf(formerrors.CodeTemplate, "%s tag must be nested in a form tag", tag)
}

// discardWriter swallows the first pass output.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error)       { return len(p), nil }
func (discardWriter) WriteString(s string) (int, error) { return len(s), nil }
