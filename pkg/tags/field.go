package tags

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formtags/pkg/assign"
	"github.com/goliatone/go-formtags/pkg/matcher"
)

// matcherArg is a field tag argument: a string literal compiled at parse
// time, or an expression resolved during the first pass.
type matcherArg struct {
	static matcher.Matcher
	expr   pongo2.IEvaluator
	raw    string
}

func (arg matcherArg) resolve(ctx *pongo2.ExecutionContext, token *pongo2.Token) (matcher.Matcher, *pongo2.Error) {
	if arg.static != nil {
		return arg.static, nil
	}
	value, perr := arg.expr.Evaluate(ctx)
	if perr != nil {
		return nil, perr
	}
	m, err := matcher.Parse(value.String())
	if err != nil {
		return nil, ctx.OrigError(err, token)
	}
	return m, nil
}

func (arg matcherArg) expression(ctx *pongo2.ExecutionContext) (string, *pongo2.Error) {
	if arg.static != nil {
		return arg.raw, nil
	}
	value, perr := arg.expr.Evaluate(ctx)
	if perr != nil {
		return "", perr
	}
	return value.String(), nil
}

func parseMatcherArgs(arguments *pongo2.Parser) ([]matcherArg, *pongo2.Error) {
	var args []matcherArg
	for arguments.Remaining() > 0 {
		if arguments.Peek(pongo2.TokenKeyword, "as") != nil {
			break
		}
		if tok := arguments.PeekType(pongo2.TokenString); tok != nil && arguments.PeekTypeN(1, pongo2.TokenSymbol) == nil {
			arguments.Consume()
			m, err := matcher.Parse(tok.Val)
			if err != nil {
				return nil, arguments.Error(err.Error(), tok)
			}
			args = append(args, matcherArg{static: m, raw: tok.Val})
			continue
		}
		expr, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, matcherArg{expr: expr})
	}
	return args, nil
}

// parseAlias reads an optional trailing "as name".
func parseAlias(arguments *pongo2.Parser, fallback string) (string, *pongo2.Error) {
	if arguments.Match(pongo2.TokenKeyword, "as") == nil {
		if arguments.Remaining() > 0 {
			return "", arguments.Error("unexpected argument", nil)
		}
		return fallback, nil
	}
	name := arguments.MatchType(pongo2.TokenIdentifier)
	if name == nil {
		return "", arguments.Error("expected a variable name after 'as'", nil)
	}
	if arguments.Remaining() > 0 {
		return "", arguments.Error("unexpected argument after variable name", nil)
	}
	return name.Val, nil
}

type fieldNode struct {
	token     *pongo2.Token
	matchers  []matcherArg
	fieldVar  string
	hasNested bool
	wrapper   *pongo2.NodeWrapper
}

func (node *fieldNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	state, ok := stateFrom(ctx)
	if !ok {
		return ctx.OrigError(outsideForm("field"), node.token)
	}
	if !state.rendering {
		return node.declare(ctx, state)
	}

	queue := state.queues[node]
	if len(queue) == 0 {
		return nil
	}
	fields := queue[0]
	state.queues[node] = queue[1:]

	fieldCtx := pongo2.NewChildExecutionContext(ctx)
	delete(fieldCtx.Private, optgroupKey)
	for i, field := range fields {
		fieldCtx.Private[node.fieldVar] = field.Context()
		fieldCtx.Private[fieldKey] = field

		var buf strings.Builder
		if perr := node.wrapper.Execute(fieldCtx, &buf); perr != nil {
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

// declare registers the tag's spec during the first pass and, when the body
// holds nested field tags, runs the body so they register too.
func (node *fieldNode) declare(ctx *pongo2.ExecutionContext, state *formState) *pongo2.Error {
	spec := assign.Spec{}
	for _, arg := range node.matchers {
		m, perr := arg.resolve(ctx, node.token)
		if perr != nil {
			return perr
		}
		spec.Matchers = append(spec.Matchers, m)
	}
	state.specs = append(state.specs, spec)
	state.owners = append(state.owners, node)

	if !node.hasNested {
		return nil
	}
	return node.wrapper.Execute(pongo2.NewChildExecutionContext(ctx), discardWriter{})
}

// parseTracker remembers which field tags are being parsed so a field tag
// can tell its parent that it has nested field tags.
var parseTracker = struct {
	sync.Mutex
	open map[*pongo2.Parser][]*fieldNode
}{open: make(map[*pongo2.Parser][]*fieldNode)}

func enterField(doc *pongo2.Parser, node *fieldNode) {
	parseTracker.Lock()
	defer parseTracker.Unlock()
	stack := parseTracker.open[doc]
	if len(stack) > 0 {
		stack[len(stack)-1].hasNested = true
	}
	parseTracker.open[doc] = append(stack, node)
}

func leaveField(doc *pongo2.Parser) {
	parseTracker.Lock()
	defer parseTracker.Unlock()
	stack := parseTracker.open[doc]
	if len(stack) <= 1 {
		delete(parseTracker.open, doc)
		return
	}
	parseTracker.open[doc] = stack[:len(stack)-1]
}

func parseField(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	matchers, err := parseMatcherArgs(arguments)
	if err != nil {
		return nil, err
	}
	fieldVar, err := parseAlias(arguments, "field")
	if err != nil {
		return nil, err
	}

	node := &fieldNode{token: start, matchers: matchers, fieldVar: fieldVar}

	enterField(doc, node)
	wrapper, endargs, err := doc.WrapUntilTag("endfield")
	leaveField(doc)
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	node.wrapper = wrapper
	return node, nil
}

type ifFieldNode struct {
	token    *pongo2.Token
	matchers []matcherArg
	then     *pongo2.NodeWrapper
	orElse   *pongo2.NodeWrapper
}

func (node *ifFieldNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	state, ok := stateFrom(ctx)
	if !ok {
		return ctx.OrigError(outsideForm("if_field"), node.token)
	}
	if !state.rendering {
		return nil
	}

	exprs := make([]string, 0, len(node.matchers))
	for _, arg := range node.matchers {
		expr, perr := arg.expression(ctx)
		if perr != nil {
			return perr
		}
		exprs = append(exprs, expr)
	}

	if state.result.MatchedAny(exprs...) {
		return node.then.Execute(ctx, writer)
	}
	if node.orElse != nil {
		return node.orElse.Execute(ctx, writer)
	}
	return nil
}

func parseIfField(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	matchers, err := parseMatcherArgs(arguments)
	if err != nil {
		return nil, err
	}
	if len(matchers) == 0 {
		return nil, arguments.Error("if_field requires at least one matcher", start)
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("unexpected argument", nil)
	}

	node := &ifFieldNode{token: start, matchers: matchers}
	wrapper, endargs, err := doc.WrapUntilTag("else", "endif_field")
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	node.then = wrapper

	if wrapper.Endtag == "else" {
		wrapper, endargs, err = doc.WrapUntilTag("endif_field")
		if err != nil {
			return nil, err
		}
		if endargs.Count() > 0 {
			return nil, endargs.Error("Arguments not allowed here.", nil)
		}
		node.orElse = wrapper
	}
	return node, nil
}
