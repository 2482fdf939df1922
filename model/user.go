package model

import (
	"time"
)

// Identity is implemented by the user shapes that carry a username.
type Identity interface {
	GetID() string
	GetUsername() string
	GetDisplayName() string
}

// Member is a room occupant, either a User or a UserPreview.
type Member interface {
	GetID() string
	GetDisplayName() string
	member()
}

// BaseUser is the smallest projection of a user.
type BaseUser struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Mention     string
}

func NewBaseUser(id, username, displayName, avatarURL string) BaseUser {
	return BaseUser{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		Mention:     "@" + username,
	}
}

func (u BaseUser) GetID() string          { return u.ID }
func (u BaseUser) GetUsername() string    { return u.Username }
func (u BaseUser) GetDisplayName() string { return u.DisplayName }
func (u BaseUser) String() string         { return u.Username }

type baseUserWire struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// ParseBaseUser reads the author fields that come along with a chat message.
// userId is required.
func ParseBaseUser(p Payload) (BaseUser, error) {
	if _, err := p.require("BaseUser", "userId"); err != nil {
		return BaseUser{}, err
	}

	var w baseUserWire
	if err := decodeEntity("BaseUser", p, &w); err != nil {
		return BaseUser{}, err
	}

	return NewBaseUser(w.UserID, w.Username, w.DisplayName, w.AvatarURL), nil
}

// Permission holds the room permissions of a user. The zero value means no
// room has been joined yet.
type Permission struct {
	AskedToSpeak bool `json:"askedToSpeak"`
	IsMod        bool `json:"isMod"`
	IsAdmin      bool `json:"isAdmin"`
}

// ParsePermission never requires a field; a nil or empty payload gives the
// zero Permission.
func ParsePermission(p Payload) (Permission, error) {
	var perm Permission
	if len(p) == 0 {
		return perm, nil
	}

	if err := decodeEntity("Permission", p, &perm); err != nil {
		return Permission{}, err
	}

	return perm, nil
}

// User is a dogehouse user as returned by a profile lookup.
type User struct {
	ID              string
	Username        string
	DisplayName     string
	AvatarURL       string
	Mention         string
	Bio             string
	LastSeen        time.Time
	Online          bool
	Following       bool
	RoomPermissions Permission
	NumFollowers    int
	NumFollowing    int
	FollowsMe       bool
	CurrentRoomID   string
}

func (u User) GetID() string          { return u.ID }
func (u User) GetUsername() string    { return u.Username }
func (u User) GetDisplayName() string { return u.DisplayName }
func (u User) String() string         { return u.Username }
func (User) member()                  {}

// ToBaseUser narrows the user down to its BaseUser fields.
func (u User) ToBaseUser() BaseUser {
	return NewBaseUser(u.ID, u.Username, u.DisplayName, u.AvatarURL)
}

// ToPreview narrows the user down to the room list preview.
func (u User) ToPreview() UserPreview {
	return UserPreview{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		NumFollowers: u.NumFollowers,
	}
}

type userWire struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	DisplayName     string  `json:"displayName"`
	AvatarURL       string  `json:"avatarUrl"`
	Bio             string  `json:"bio"`
	LastOnline      string  `json:"lastOnline"`
	Online          bool    `json:"online"`
	YouAreFollowing bool    `json:"youAreFollowing"`
	RoomPermissions Payload `json:"roomPermissions"`
	NumFollowers    int     `json:"numFollowers"`
	NumFollowing    int     `json:"numFollowing"`
	FollowsYou      bool    `json:"followsYou"`
	CurrentRoomID   string  `json:"currentRoomId"`
}

// ParseUser parses a full user. id is required, a lastOnline that is sent
// has to be a valid timestamp.
func ParseUser(p Payload) (User, error) {
	if _, err := p.require("User", "id"); err != nil {
		return User{}, err
	}

	var w userWire
	if err := decodeEntity("User", p, &w); err != nil {
		return User{}, err
	}

	lastSeen, err := parseTimeField("User", "lastOnline", w.LastOnline)
	if err != nil {
		return User{}, err
	}

	perm, err := ParsePermission(w.RoomPermissions)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:              w.ID,
		Username:        w.Username,
		DisplayName:     w.DisplayName,
		AvatarURL:       w.AvatarURL,
		Mention:         "@" + w.Username,
		Bio:             w.Bio,
		LastSeen:        lastSeen,
		Online:          w.Online,
		Following:       w.YouAreFollowing,
		RoomPermissions: perm,
		NumFollowers:    w.NumFollowers,
		NumFollowing:    w.NumFollowing,
		FollowsMe:       w.FollowsYou,
		CurrentRoomID:   w.CurrentRoomID,
	}, nil
}

// UserPreview is the entry of a room member preview list.
type UserPreview struct {
	ID           string
	DisplayName  string
	NumFollowers int
}

func (u UserPreview) GetID() string          { return u.ID }
func (u UserPreview) GetDisplayName() string { return u.DisplayName }
func (u UserPreview) String() string         { return u.DisplayName }
func (UserPreview) member()                  {}

type userPreviewWire struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	NumFollowers int    `json:"numFollowers"`
}

func ParseUserPreview(p Payload) (UserPreview, error) {
	if _, err := p.require("UserPreview", "id"); err != nil {
		return UserPreview{}, err
	}

	var w userPreviewWire
	if err := decodeEntity("UserPreview", p, &w); err != nil {
		return UserPreview{}, err
	}

	return UserPreview(w), nil
}
