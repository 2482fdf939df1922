package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/reflow/wordwrap"

	"github.com/42wim/matterdoge/convert"
	"github.com/42wim/matterdoge/model"
)

type commands struct {
	resolver           *convert.Resolver
	wrapWidth          int
	syntaxHighlighting string
}

// handle runs the command in mc.Message, if there is one. ok is false for
// messages that aren't a known command.
func (c *commands) handle(ctx context.Context, mc *model.Context) (reply string, ok bool, err error) {
	prefix, found := mc.Client.MatchPrefix(mc.Message.Content)
	if !found {
		return "", false, nil
	}

	cmd, ok, err := convert.ParseCommand(prefix, mc.Message.Content)
	if !ok || err != nil {
		return "", ok, err
	}

	logger.Debugf("command %s from %s: %v", cmd.Name, mc.Author, cmd.Args)

	switch cmd.Name {
	case "whois":
		reply, err = c.whois(ctx, mc, cmd.Args)
	case "echo":
		reply = c.echo(mc.Message, cmd.Args)
	default:
		return "", false, nil
	}

	return reply, true, err
}

func (c *commands) whois(ctx context.Context, mc *model.Context, args []string) (string, error) {
	if len(args) == 0 {
		args = []string{mc.Author.ID}
	}

	lines := make([]string, 0, len(args))

	for _, arg := range args {
		user, err := c.resolver.ResolveUser(ctx, mc, arg)

		switch {
		case errors.Is(err, model.ErrUserNotFound):
			lines = append(lines, fmt.Sprintf("no such user: %s", convert.Ref(arg)))
		case err != nil:
			return strings.Join(lines, "\n"), err
		default:
			lines = append(lines, model.Repr(user))
		}
	}

	return strings.Join(lines, "\n"), nil
}

// echo repeats the arguments, wrapped, followed by every code block of the
// message highlighted.
func (c *commands) echo(msg model.Message, args []string) string {
	text := strings.Join(args, " ")
	if c.wrapWidth > 0 {
		text = wordwrap.String(text, c.wrapWidth)
	}

	for _, tok := range msg.Tokens {
		if tok.Kind != model.TokenBlock {
			continue
		}

		if code, ok := tok.Value.(string); ok {
			text += "\n" + highlight(code, c.syntaxHighlighting)
		}
	}

	return text
}

// highlight formats code with chroma. syntax is formatter:style, an empty
// syntax disables highlighting.
func highlight(code, syntax string) string {
	if syntax == "" {
		return code
	}

	formatter := "terminal256"
	style := syntax

	if v := strings.SplitN(syntax, ":", 2); len(v) == 2 {
		formatter = v[0]
		style = v[1]
	}

	var b bytes.Buffer
	if err := quick.Highlight(&b, code, "", formatter, style); err != nil {
		logger.Debugf("highlight failed: %s", err)

		return code
	}

	return b.String()
}
