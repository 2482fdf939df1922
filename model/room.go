package model

import (
	"strconv"
	"time"
)

// Room is a dogehouse room. Count is the number of people inside as reported
// by the service, Users only holds the preview list that came with it.
type Room struct {
	ID          string
	CreatorID   string
	Name        string
	Description string
	CreatedAt   time.Time
	IsPrivate   bool
	Count       int
	Users       []Member
}

func (r Room) String() string { return r.Name }

// Size returns the occupancy, not the length of the preview list.
func (r Room) Size() int { return r.Count }

// WithMember returns a copy of the room with m added to (or replacing the
// entry with the same id in) the member list.
func (r Room) WithMember(m Member) Room {
	users := make([]Member, 0, len(r.Users)+1)
	replaced := false

	for _, u := range r.Users {
		if u.GetID() == m.GetID() {
			users = append(users, m)
			replaced = true

			continue
		}

		users = append(users, u)
	}

	if !replaced {
		users = append(users, m)
		r.Count++
	}

	r.Users = users

	return r
}

// WithoutMember returns a copy of the room without the member with userID.
func (r Room) WithoutMember(userID string) Room {
	users := make([]Member, 0, len(r.Users))

	for _, u := range r.Users {
		if u.GetID() == userID {
			continue
		}

		users = append(users, u)
	}

	if r.Count > 0 {
		r.Count--
	}

	r.Users = users

	return r
}

type roomWire struct {
	ID                string    `json:"id"`
	CreatorID         string    `json:"creatorId"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	InsertedAt        string    `json:"inserted_at"`
	IsPrivate         bool      `json:"isPrivate"`
	NumPeopleInside   int       `json:"numPeopleInside"`
	PeoplePreviewList []Payload `json:"peoplePreviewList"`
}

// ParseRoom parses a room and its member preview list. id is required, so is
// the id of every preview entry.
func ParseRoom(p Payload) (Room, error) {
	if _, err := p.require("Room", "id"); err != nil {
		return Room{}, err
	}

	var w roomWire
	if err := decodeEntity("Room", p, &w); err != nil {
		return Room{}, err
	}

	createdAt, err := parseTimeField("Room", "inserted_at", w.InsertedAt)
	if err != nil {
		return Room{}, err
	}

	users := make([]Member, 0, len(w.PeoplePreviewList))

	for i, entry := range w.PeoplePreviewList {
		preview, err := ParseUserPreview(entry)
		if err != nil {
			return Room{}, malformed("Room", "peoplePreviewList."+strconv.Itoa(i), err)
		}

		users = append(users, preview)
	}

	return Room{
		ID:          w.ID,
		CreatorID:   w.CreatorID,
		Name:        w.Name,
		Description: w.Description,
		CreatedAt:   createdAt,
		IsPrivate:   w.IsPrivate,
		Count:       w.NumPeopleInside,
		Users:       users,
	}, nil
}

// ParseRooms parses a room list, failing on the first bad entry.
func ParseRooms(list []Payload) ([]Room, error) {
	rooms := make([]Room, 0, len(list))

	for _, p := range list {
		room, err := ParseRoom(p)
		if err != nil {
			return nil, err
		}

		rooms = append(rooms, room)
	}

	return rooms, nil
}
