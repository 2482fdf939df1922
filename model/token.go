package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind is the "t" member of a message token.
type TokenKind string

const (
	TokenText    TokenKind = "text"
	TokenMention TokenKind = "mention"
	TokenEmote   TokenKind = "emote"
	TokenLink    TokenKind = "link"
	TokenBlock   TokenKind = "block"
)

// Token is one segment of a chat message as the service sends it.
type Token struct {
	Kind  TokenKind   `json:"t"`
	Value interface{} `json:"v"`
}

// Text returns the literal value of the token, if it has one.
func (t Token) Text() (string, bool) {
	s, ok := t.Value.(string)
	return s, ok
}

// Renderer flattens tokens into display text.
type Renderer struct {
	// OnUnknown is called for every token with a kind the renderer doesn't
	// know. It must not block.
	OnUnknown func(Token)
}

// DefaultRenderer logs unknown kinds at debug level.
var DefaultRenderer = &Renderer{
	OnUnknown: func(t Token) {
		logger.WithError(ErrUnknownTokenKind).Debugf("rendering token kind %q as literal", t.Kind)
	},
}

// RenderTokens renders with the DefaultRenderer.
func RenderTokens(tokens []Token) (string, error) {
	return DefaultRenderer.Render(tokens)
}

// Render concatenates the contribution of each token in order. Unknown kinds
// never fail; a known kind without a string value does.
func (r *Renderer) Render(tokens []Token) (string, error) {
	var b strings.Builder

	for i, t := range tokens {
		s, err := r.renderToken(t)
		if err != nil {
			return "", malformed("token", strconv.Itoa(i), err)
		}

		b.WriteString(s)
	}

	return b.String(), nil
}

func (r *Renderer) renderToken(t Token) (string, error) {
	switch t.Kind {
	case TokenText, TokenMention, TokenEmote, TokenLink, TokenBlock:
	default:
		if r.OnUnknown != nil {
			r.OnUnknown(t)
		}

		s, _ := t.Text()

		return s, nil
	}

	v, ok := t.Text()
	if !ok {
		return "", fmt.Errorf("%s token needs a string value, got %T", t.Kind, t.Value)
	}

	switch t.Kind {
	case TokenMention:
		return "@" + v, nil
	case TokenEmote:
		return ":" + v + ":", nil
	case TokenBlock:
		return "`" + v + "`", nil
	default:
		return v, nil
	}
}
