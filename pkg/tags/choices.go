package tags

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	formerrors "github.com/goliatone/go-formtags/pkg/errors"
	"github.com/goliatone/go-formtags/pkg/model"
)

// choiceGroup is an option group as seen by field_choice_groups. Ungrouped
// choices are collected into unnamed groups.
type choiceGroup struct {
	label   string
	named   bool
	index   int
	choices []model.Choice
	nextIdx int
}

func (g *choiceGroup) context() map[string]any {
	choices := make([]map[string]any, 0, len(g.choices))
	for _, choice := range g.choices {
		choices = append(choices, map[string]any{"value": choice.Value, "label": choice.Label})
	}
	return map[string]any{
		"label":   g.label,
		"index":   g.index,
		"choices": choices,
	}
}

func groupChoices(field model.Field) []*choiceGroup {
	var groups []*choiceGroup
	next := 0
	for _, choice := range field.Choices {
		if choice.IsGroup() {
			groups = append(groups, &choiceGroup{
				label:   choice.Label,
				named:   true,
				index:   len(groups),
				choices: choice.Choices,
				nextIdx: next,
			})
			next += len(choice.Choices)
			continue
		}
		if len(groups) == 0 || groups[len(groups)-1].named {
			groups = append(groups, &choiceGroup{index: len(groups), nextIdx: next})
		}
		last := groups[len(groups)-1]
		last.choices = append(last.choices, choice)
		next++
	}
	if len(groups) == 0 {
		groups = append(groups, &choiceGroup{})
	}
	return groups
}

func currentField(ctx *pongo2.ExecutionContext, tag string) (model.Field, *formState, error) {
	state, ok := stateFrom(ctx)
	if !ok {
		return model.Field{}, nil, outsideForm(tag)
	}
	field, ok := ctx.Private[fieldKey].(model.Field)
	if !ok && state.rendering {
		return model.Field{}, state, formerrors.Newf(formerrors.CodeTemplate, "%s tag must be nested in a field tag", tag)
	}
	return field, state, nil
}

type fieldChoicesNode struct {
	token     *pongo2.Token
	choiceVar string
	body      *pongo2.NodeWrapper
	empty     *pongo2.NodeWrapper
}

func (node *fieldChoicesNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	field, state, err := currentField(ctx, "field_choices")
	if err != nil {
		return ctx.OrigError(err, node.token)
	}
	if !state.rendering {
		return nil
	}

	choices := field.FlatChoices()
	index := 0
	if group, ok := ctx.Private[optgroupKey].(*choiceGroup); ok && group != nil {
		choices = group.choices
		index = group.nextIdx
	}

	choiceCtx := pongo2.NewChildExecutionContext(ctx)
	if len(choices) == 0 {
		if node.empty == nil {
			return nil
		}
		return node.empty.Execute(choiceCtx, writer)
	}

	for _, choice := range choices {
		selected := field.Selected(choice.Value)
		checked := ""
		if selected {
			checked = "checked=checked"
		}
		choiceCtx.Private[node.choiceVar] = map[string]any{
			"value":    choice.Value,
			"label":    choice.Label,
			"selected": selected,
			"checked":  checked,
			"index":    index,
			"id":       fmt.Sprintf("%s_%d", field.ID(), index),
		}
		if perr := node.body.Execute(choiceCtx, writer); perr != nil {
			return perr
		}
		index++
	}
	return nil
}

func parseFieldChoices(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	choiceVar, err := parseAlias(arguments, "choice")
	if err != nil {
		return nil, arguments.Error("field_choices takes 0 or 2 arguments: [as <choice var>]", start)
	}

	node := &fieldChoicesNode{token: start, choiceVar: choiceVar}
	wrapper, endargs, err := doc.WrapUntilTag("empty", "endfield_choices")
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	node.body = wrapper

	if wrapper.Endtag == "empty" {
		wrapper, endargs, err = doc.WrapUntilTag("endfield_choices")
		if err != nil {
			return nil, err
		}
		if endargs.Count() > 0 {
			return nil, endargs.Error("Arguments not allowed here.", nil)
		}
		node.empty = wrapper
	}
	return node, nil
}

type fieldChoiceGroupsNode struct {
	token    *pongo2.Token
	groupVar string
	body     *pongo2.NodeWrapper
}

func (node *fieldChoiceGroupsNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	field, state, err := currentField(ctx, "field_choice_groups")
	if err != nil {
		return ctx.OrigError(err, node.token)
	}
	if !state.rendering {
		return nil
	}

	groupCtx := pongo2.NewChildExecutionContext(ctx)
	for i, group := range groupChoices(field) {
		groupCtx.Private[node.groupVar] = group.context()
		groupCtx.Private[optgroupKey] = group

		var buf strings.Builder
		if perr := node.body.Execute(groupCtx, &buf); perr != nil {
			return perr
		}
		out := buf.String()
		if i > 0 {
			out = "\n" + out
		}
		if _, err := writer.WriteString(out); err != nil {
			return ctx.OrigError(err, node.token)
		}
	}
	return nil
}

func parseFieldChoiceGroups(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	groupVar, err := parseAlias(arguments, "optgroup")
	if err != nil {
		return nil, arguments.Error("field_choice_groups takes 0 or 2 arguments: [as <group var>]", start)
	}

	wrapper, endargs, err := doc.WrapUntilTag("endfield_choice_groups")
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	return &fieldChoiceGroupsNode{token: start, groupVar: groupVar, body: wrapper}, nil
}
