package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type RenderTest struct {
	Desc   string
	Tokens []Token
	Result string
}

var renderTests = []RenderTest{
	{Desc: "empty", Tokens: nil, Result: ""},
	{Desc: "text", Tokens: []Token{{Kind: TokenText, Value: "hello world"}}, Result: "hello world"},
	{Desc: "mention", Tokens: []Token{{Kind: TokenMention, Value: "alice"}}, Result: "@alice"},
	{Desc: "emote", Tokens: []Token{{Kind: TokenEmote, Value: "catJAM"}}, Result: ":catJAM:"},
	{Desc: "link", Tokens: []Token{{Kind: TokenLink, Value: "https://dogehouse.tv"}}, Result: "https://dogehouse.tv"},
	{Desc: "block", Tokens: []Token{{Kind: TokenBlock, Value: "go test"}}, Result: "`go test`"},
	{
		Desc: "mixed keeps order and adds no separator",
		Tokens: []Token{
			{Kind: TokenText, Value: "hi "},
			{Kind: TokenMention, Value: "bob"},
			{Kind: TokenText, Value: ", see "},
			{Kind: TokenLink, Value: "https://x.y"},
		},
		Result: "hi @bob, see https://x.y",
	},
	{Desc: "unknown kind with text", Tokens: []Token{{Kind: "spoiler", Value: "boo"}}, Result: "boo"},
	{Desc: "unknown kind without text", Tokens: []Token{{Kind: "poll", Value: map[string]interface{}{"q": 1}}}, Result: ""},
	{Desc: "unknown kind without value", Tokens: []Token{{Kind: "", Value: nil}, {Kind: TokenText, Value: "x"}}, Result: "x"},
}

func TestRender(t *testing.T) {
	for _, tc := range renderTests {
		got, err := RenderTokens(tc.Tokens)
		assert.NoError(t, err, tc.Desc)
		assert.Equal(t, tc.Result, got, tc.Desc)
	}
}

func TestRenderDeterministic(t *testing.T) {
	tokens := renderTests[6].Tokens
	first, _ := RenderTokens(tokens)

	for i := 0; i < 10; i++ {
		again, _ := RenderTokens(tokens)
		assert.Equal(t, first, again)
	}
}

func TestRenderUnknownHook(t *testing.T) {
	var seen []TokenKind

	r := &Renderer{OnUnknown: func(tk Token) { seen = append(seen, tk.Kind) }}
	got, err := r.Render([]Token{{Kind: "spoiler", Value: "a"}, {Kind: TokenText, Value: "b"}, {Kind: "poll"}})
	assert.NoError(t, err)
	assert.Equal(t, "ab", got)
	assert.Equal(t, []TokenKind{"spoiler", "poll"}, seen)

	// a nil hook is fine
	got, err = (&Renderer{}).Render([]Token{{Kind: "spoiler", Value: "a"}})
	assert.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestRenderMalformedKnownKind(t *testing.T) {
	for _, kind := range []TokenKind{TokenText, TokenMention, TokenEmote, TokenLink, TokenBlock} {
		_, err := RenderTokens([]Token{{Kind: TokenText, Value: "ok"}, {Kind: kind, Value: 12}})
		assert.True(t, errors.Is(err, ErrMalformedPayload), string(kind))

		var perr *PayloadError
		if assert.True(t, errors.As(err, &perr)) {
			assert.Equal(t, "1", perr.Field)
		}

		_, err = RenderTokens([]Token{{Kind: kind}})
		assert.True(t, errors.Is(err, ErrMalformedPayload), string(kind))
	}
}
