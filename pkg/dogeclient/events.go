package dogeclient

import (
	"github.com/42wim/matterdoge/bridge"
	"github.com/42wim/matterdoge/model"
)

// handleEvent turns pushed frames into bridge events. Frames that don't
// parse are logged and dropped.
func (m *Client) handleEvent(env *envelope) {
	data := env.data()

	switch env.Op {
	case opChatMsg:
		p, ok := toPayload(data["msg"])
		if !ok {
			m.logger.Errorf("dropping %s without msg", env.Op)

			return
		}

		msg, err := model.ParseMessage(p)
		if err != nil {
			m.logger.Errorf("dropping %s: %s", env.Op, err)

			return
		}

		m.emit(bridge.EventMessage, &bridge.MessageEvent{
			Message: msg,
			Context: model.NewContext(m.session, msg),
		})
	case opUserJoin:
		p, _ := toPayload(data["user"])

		user, err := model.ParseUser(p)
		if err != nil {
			m.logger.Errorf("dropping %s: %s", env.Op, err)

			return
		}

		m.remember(p)

		roomID, _ := data["roomId"].(string)

		m.Lock()
		if r := m.session.Room; r != nil && (roomID == "" || roomID == r.ID) {
			room := r.WithMember(user)
			m.session.SetRoom(&room)
		}
		m.Unlock()

		m.emit(bridge.EventUserJoin, &bridge.UserJoinEvent{User: user, RoomID: roomID})
	case opUserLeave:
		userID, _ := data["userId"].(string)
		if userID == "" {
			m.logger.Errorf("dropping %s without userId", env.Op)

			return
		}

		roomID, _ := data["roomId"].(string)

		m.Lock()
		if r := m.session.Room; r != nil && (roomID == "" || roomID == r.ID) {
			room := r.WithoutMember(userID)
			m.session.SetRoom(&room)
		}
		m.Unlock()

		m.emit(bridge.EventUserLeave, &bridge.UserLeaveEvent{UserID: userID, RoomID: roomID})
	default:
		m.logger.Debugf("unhandled op %s", env.Op)
	}
}
