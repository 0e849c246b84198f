package tags

import (
	"github.com/flosch/pongo2/v6"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/model"
)

type formNode struct {
	token   *pongo2.Token
	form    pongo2.IEvaluator
	wrapper *pongo2.NodeWrapper
}

func (node *formNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	value, perr := node.form.Evaluate(ctx)
	if perr != nil {
		return perr
	}
	form, err := model.FormFrom(value.Interface())
	if err != nil {
		return ctx.OrigError(formerrors.Wrap(err, formerrors.CodeTemplate, "form tag argument is not a form"), node.token)
	}

	state := &formState{form: form}
	formCtx := pongo2.NewChildExecutionContext(ctx)
	formCtx.Private[stateKey] = state
	formCtx.Private[formKey] = form
	delete(formCtx.Private, fieldKey)
	delete(formCtx.Private, optgroupKey)

	if perr := node.wrapper.Execute(formCtx, discardWriter{}); perr != nil {
		return perr
	}

	result, err := assignerFrom(ctx).Assign(form.VisibleFields(), state.specs)
	if err != nil {
		return ctx.OrigError(err, node.token)
	}
	state.result = result
	state.queues = make(map[*fieldNode][][]model.Field, len(state.owners))
	for i, owner := range state.owners {
		state.queues[owner] = append(state.queues[owner], result.FieldsFor(i))
	}
	state.rendering = true

	return node.wrapper.Execute(formCtx, writer)
}

func parseForm(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	if arguments.Count() == 0 {
		return nil, arguments.Error("form tag requires a single argument", start)
	}
	expr, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("form tag requires a single argument", nil)
	}

	wrapper, endargs, err := doc.WrapUntilTag("endform")
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}

	return &formNode{token: start, form: expr, wrapper: wrapper}, nil
}

type hiddenFieldsNode struct {
	token *pongo2.Token
}

func (node *hiddenFieldsNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	state, ok := stateFrom(ctx)
	if !ok {
		return ctx.OrigError(outsideForm("hidden_fields"), node.token)
	}
	if !state.rendering {
		return nil
	}
	for i, field := range state.form.HiddenFields() {
		if i > 0 {
			if _, err := writer.WriteString("\n"); err != nil {
				return ctx.OrigError(err, node.token)
			}
		}
		if _, err := writer.WriteString(field.HTML()); err != nil {
			return ctx.OrigError(err, node.token)
		}
	}
	return nil
}

func parseHiddenFields(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	if arguments.Count() > 0 {
		return nil, arguments.Error("hidden_fields takes no arguments", nil)
	}
	return &hiddenFieldsNode{token: start}, nil
}
