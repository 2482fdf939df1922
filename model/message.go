package model

import (
	"time"
)

// Message is a chat message. Content is always the rendering of Tokens.
type Message struct {
	ID        string
	Tokens    []Token
	IsWhisper bool
	CreatedAt time.Time
	Author    BaseUser
	Content   string
}

// NewMessage builds a message and renders its content.
func NewMessage(id string, tokens []Token, isWhisper bool, createdAt time.Time, author BaseUser) (Message, error) {
	content, err := RenderTokens(tokens)
	if err != nil {
		return Message{}, err
	}

	return Message{
		ID:        id,
		Tokens:    tokens,
		IsWhisper: isWhisper,
		CreatedAt: createdAt,
		Author:    author,
		Content:   content,
	}, nil
}

func (m Message) String() string { return m.Content }

type messageWire struct {
	ID        string  `json:"id"`
	Tokens    []Token `json:"tokens"`
	IsWhisper bool    `json:"isWhisper"`
	SentAt    string  `json:"sentAt"`
}

// ParseMessage parses a chat message; the author fields live in the same
// payload. id and userId are required.
func ParseMessage(p Payload) (Message, error) {
	if _, err := p.require("Message", "id"); err != nil {
		return Message{}, err
	}

	var w messageWire
	if err := decodeEntity("Message", p, &w); err != nil {
		return Message{}, err
	}

	sentAt, err := parseTimeField("Message", "sentAt", w.SentAt)
	if err != nil {
		return Message{}, err
	}

	author, err := ParseBaseUser(p)
	if err != nil {
		return Message{}, err
	}

	msg, err := NewMessage(w.ID, w.Tokens, w.IsWhisper, sentAt, author)
	if err != nil {
		return Message{}, malformed("Message", "tokens", err)
	}

	return msg, nil
}
