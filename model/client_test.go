package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientPrefixSet(t *testing.T) {
	c := NewClient(nil, "!", "", "doge ", "!")

	assert.Equal(t, []string{"!", "doge "}, c.Prefix)
	assert.True(t, c.HasPrefix("!"))
	assert.False(t, c.HasPrefix("?"))
	assert.Nil(t, c.Room)
	assert.Nil(t, c.User)
}

func TestMatchPrefix(t *testing.T) {
	c := NewClient(nil, "!", "!!", "doge ")

	p, ok := c.MatchPrefix("!!echo hi")
	assert.True(t, ok)
	assert.Equal(t, "!!", p)

	p, ok = c.MatchPrefix("doge whois @alice")
	assert.True(t, ok)
	assert.Equal(t, "doge ", p)

	_, ok = c.MatchPrefix("hello")
	assert.False(t, ok)
}

func TestClientSetters(t *testing.T) {
	c := NewClient(nil)

	u := &User{ID: "me", Username: "bot"}
	c.SetUser(u)
	assert.Equal(t, u, c.User)

	r := &Room{ID: "r1"}
	c.SetRoom(r)
	assert.Equal(t, "r1", c.Room.ID)

	c.SetRooms([]Room{{ID: "r1"}, {ID: "r2"}})
	assert.Len(t, c.Rooms, 2)

	c.SetRoom(nil)
	assert.Nil(t, c.Room)
}

func TestNewContext(t *testing.T) {
	c := NewClient(nil, "!")
	m, err := ParseMessage(messagePayload(tok("text", "!whois @alice")))
	require.NoError(t, err)

	ctx := NewContext(c, m)
	assert.Same(t, c, ctx.Client)
	assert.Same(t, ctx.Client, ctx.Bot)
	assert.Equal(t, m.Author, ctx.Author)
	assert.Equal(t, "!whois @alice", ctx.Message.Content)
	assert.False(t, ctx.Message.CreatedAt.Before(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
}
