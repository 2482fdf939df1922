package bridge

import (
	"context"

	"github.com/42wim/matterdoge/model"
)

// Gateway is the connection to the dogehouse service. It is also the
// model.UserFetcher handed to the session so commands can look users up.
type Gateway interface {
	model.UserFetcher

	FetchRooms(ctx context.Context) ([]model.Room, error)
	JoinRoom(ctx context.Context, roomID string) (model.Room, error)

	Events() <-chan *Event
	Session() *model.Client

	Connected() bool
	Logout() error
}

const (
	EventReady        = "ready"
	EventRoomsFetched = "rooms_fetched"
	EventRoomJoin     = "room_join"
	EventMessage      = "message"
	EventUserJoin     = "user_join"
	EventUserLeave    = "user_leave"
	EventLogout       = "logout"
)

type Event struct {
	Type string
	Data interface{}
}

// ReadyEvent is sent once the gateway accepted our tokens.
type ReadyEvent struct {
	User model.User
}

type RoomsFetchedEvent struct {
	Rooms []model.Room
}

type RoomJoinEvent struct {
	Room model.Room
}

// MessageEvent carries a chat message together with the command context
// built for it.
type MessageEvent struct {
	Message model.Message
	Context *model.Context
}

type UserJoinEvent struct {
	User   model.User
	RoomID string
}

type UserLeaveEvent struct {
	UserID string
	RoomID string
}

type LogoutEvent struct{}
