package dogeclient

import (
	"context"
	"fmt"

	"github.com/42wim/matterdoge/bridge"
	"github.com/42wim/matterdoge/model"
)

type RequestError struct {
	Op  string
	Err interface{}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func replyError(op string, reply *envelope) error {
	if reply.E != nil {
		return &RequestError{Op: op, Err: reply.E}
	}

	if e := reply.data()["error"]; e != nil {
		return &RequestError{Op: op, Err: e}
	}

	return nil
}

// FetchRooms asks for the top public rooms and stores them in the session.
func (m *Client) FetchRooms(ctx context.Context) ([]model.Room, error) {
	reply, err := m.request(ctx, opGetRooms, model.Payload{"cursor": 0})
	if err != nil {
		return nil, err
	}

	if err := replyError(opGetRooms, reply); err != nil {
		return nil, err
	}

	list, err := toPayloads("Room", "rooms", reply.data()["rooms"])
	if err != nil {
		return nil, err
	}

	rooms, err := model.ParseRooms(list)
	if err != nil {
		return nil, fmt.Errorf("dogeclient.FetchRooms: %w", err)
	}

	m.Lock()
	m.session.SetRooms(rooms)
	m.Unlock()

	m.logger.Debugf("fetched %d rooms", len(rooms))
	m.emit(bridge.EventRoomsFetched, &bridge.RoomsFetchedEvent{Rooms: rooms})

	return rooms, nil
}

// JoinRoom joins roomID and makes it the current room of the session.
func (m *Client) JoinRoom(ctx context.Context, roomID string) (model.Room, error) {
	reply, err := m.request(ctx, opJoinRoom, model.Payload{"roomId": roomID})
	if err != nil {
		return model.Room{}, err
	}

	if err := replyError(opJoinRoom, reply); err != nil {
		return model.Room{}, err
	}

	room, err := model.ParseRoom(unwrap(reply.data(), "room"))
	if err != nil {
		return model.Room{}, fmt.Errorf("dogeclient.JoinRoom: %w", err)
	}

	m.Lock()
	m.session.SetRoom(&room)
	m.Unlock()

	m.logger.Infof("joined room %s (%s)", room.Name, room.ID)
	m.emit(bridge.EventRoomJoin, &bridge.RoomJoinEvent{Room: room})

	return room, nil
}
