package model

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

// UserFetcher looks a user up by id or username. found is false when the
// service doesn't know the user, err is only set when the lookup itself
// failed.
type UserFetcher interface {
	FetchUser(ctx context.Context, idOrUsername string) (user Payload, found bool, err error)
}

// Client is the session state of the bot. Room is nil until a room has been
// joined. The gateway updates User, Room and Rooms; everything else only
// reads.
type Client struct {
	User   *User
	Room   *Room
	Rooms  []Room
	Prefix []string

	fetcher UserFetcher
}

// NewClient creates the session state. Duplicate and empty prefixes are
// dropped.
func NewClient(fetcher UserFetcher, prefixes ...string) *Client {
	return &Client{
		Prefix:  lo.Uniq(lo.Compact(prefixes)),
		fetcher: fetcher,
	}
}

// Fetcher returns the transport used for user lookups.
func (c *Client) Fetcher() UserFetcher {
	return c.fetcher
}

func (c *Client) SetUser(u *User) {
	c.User = u
}

func (c *Client) SetRoom(r *Room) {
	c.Room = r
}

func (c *Client) SetRooms(rooms []Room) {
	c.Rooms = rooms
}

// HasPrefix reports whether p is one of the configured command prefixes.
func (c *Client) HasPrefix(p string) bool {
	return lo.Contains(c.Prefix, p)
}

// MatchPrefix returns the longest prefix text starts with.
func (c *Client) MatchPrefix(text string) (string, bool) {
	matches := lo.Filter(c.Prefix, func(p string, _ int) bool {
		return strings.HasPrefix(text, p)
	})
	if len(matches) == 0 {
		return "", false
	}

	return lo.MaxBy(matches, func(a, b string) bool { return len(a) > len(b) }), true
}

// Context is created for every received message.
type Context struct {
	Client  *Client
	Bot     *Client
	Message Message
	Author  BaseUser
}

func NewContext(client *Client, msg Message) *Context {
	return &Context{
		Client:  client,
		Bot:     client,
		Message: msg,
		Author:  msg.Author,
	}
}
