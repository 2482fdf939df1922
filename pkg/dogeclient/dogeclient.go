package dogeclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru"
	prefixed "github.com/matterbridge/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"

	"github.com/42wim/matterdoge/bridge"
	"github.com/42wim/matterdoge/model"
)

const (
	protocolVersion = "0.2.0"
	platform        = "matterdoge"

	opAuth      = "auth:request"
	opGetUser   = "user:get_info"
	opGetRooms  = "room:get_top"
	opJoinRoom  = "room:join"
	opChatMsg   = "new_chat_msg"
	opUserJoin  = "new_user_join_room"
	opUserLeave = "user_left_room"

	writeWait    = 10 * time.Second
	userCacheTTL = time.Minute
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrAuthFailed   = errors.New("authentication failed")
)

type Credentials struct {
	Token         string
	RefreshToken  string
	Server        string
	SkipTLSVerify bool
}

// Directory keeps user payloads around for lookups while disconnected.
type Directory interface {
	model.UserFetcher
	Put(user model.Payload) error
}

// envelope is one frame on the socket. Requests carry a ref, replies echo it.
// Pushed events use either p or the older d member.
type envelope struct {
	Op  string        `json:"op"`
	P   model.Payload `json:"p,omitempty"`
	D   model.Payload `json:"d,omitempty"`
	Ref string        `json:"ref,omitempty"`
	V   string        `json:"v,omitempty"`
	E   interface{}   `json:"e,omitempty"`
}

func (e *envelope) data() model.Payload {
	if e.P != nil {
		return e.P
	}

	return e.D
}

type Client struct {
	sync.RWMutex
	*Credentials

	EventChan   chan *bridge.Event
	WsConnected bool
	Directory   Directory

	session    *model.Client
	conn       *websocket.Conn
	writeMu    sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]chan *envelope
	wsChan     chan *envelope
	cancel     context.CancelFunc
	logger     *logrus.Entry
	rootLogger *logrus.Logger
	lruCache   *lru.Cache
	cacheTTL   time.Duration

	queueMu     sync.Mutex
	queue       []*bridge.Event
	queueNotify chan struct{}
}

var _ bridge.Gateway = (*Client)(nil)

func New(cred *Credentials, prefixes ...string) *Client {
	rootLogger := logrus.New()
	rootLogger.SetFormatter(&prefixed.TextFormatter{
		PrefixPadding: 13,
		DisableColors: true,
	})

	cache, _ := lru.New(500)

	m := &Client{
		Credentials: cred,
		EventChan:   make(chan *bridge.Event, 100),
		pending:     make(map[string]chan *envelope),
		rootLogger:  rootLogger,
		lruCache:    cache,
		cacheTTL:    userCacheTTL,
		queueNotify: make(chan struct{}, 1),
		logger:      rootLogger.WithFields(logrus.Fields{"prefix": "dogeclient"}),
	}

	m.session = model.NewClient(m, prefixes...)

	go m.pump()

	return m
}

// Connect dials the gateway, authenticates with the configured tokens and
// starts the receiver. There is no reconnect; a dropped socket ends with a
// LogoutEvent.
func (m *Client) Connect(ctx context.Context) error {
	dialer := &websocket.Dialer{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: m.SkipTLSVerify, //nolint:gosec
		},
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}

	m.logger.Debugf("WsClient: making connection: %s", m.Server)

	conn, _, err := dialer.DialContext(ctx, m.Server, nil)
	if err != nil {
		return fmt.Errorf("dogeclient.Connect: %w", err)
	}

	rctx, cancel := context.WithCancel(context.Background())

	m.Lock()
	m.conn = conn
	m.cancel = cancel
	m.wsChan = make(chan *envelope, 100)
	m.WsConnected = true
	m.Unlock()

	go m.readLoop(conn, m.wsChan)
	go m.WsReceiver(rctx)

	user, err := m.auth(ctx)
	if err != nil {
		m.Logout()

		return err
	}

	m.Lock()
	m.session.SetUser(&user)
	m.Unlock()

	m.logger.Infof("logged in as %s (%s)", user.Username, user.ID)
	m.emit(bridge.EventReady, &bridge.ReadyEvent{User: user})

	return nil
}

func (m *Client) auth(ctx context.Context) (model.User, error) {
	reply, err := m.request(ctx, opAuth, model.Payload{
		"accessToken":      m.Token,
		"refreshToken":     m.RefreshToken,
		"platform":         platform,
		"reconnectToVoice": false,
		"muted":            true,
		"deafened":         true,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("dogeclient.auth: %w", err)
	}

	if reply.E != nil || reply.data()["error"] != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrAuthFailed, firstNonNil(reply.E, reply.data()["error"]))
	}

	p := unwrap(reply.data(), "user")

	user, err := model.ParseUser(p)
	if err != nil {
		return model.User{}, fmt.Errorf("dogeclient.auth: %w", err)
	}

	m.remember(p)

	return user, nil
}

// readLoop pumps frames off the socket until it fails, then closes out.
func (m *Client) readLoop(conn *websocket.Conn, out chan<- *envelope) {
	defer close(out)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Errorf("read: %s", err)
			}

			return
		}

		env := &envelope{}
		if err := json.Unmarshal(data, env); err != nil {
			m.logger.Errorf("dropping invalid frame: %s", err)

			continue
		}

		out <- env
	}
}

// WsReceiver dispatches replies to their waiting requests and everything else
// to handleEvent. It returns when the socket closes or ctx is done.
func (m *Client) WsReceiver(ctx context.Context) {
	m.logger.Debug("starting WsReceiver")

	m.RLock()
	in := m.wsChan
	m.RUnlock()

	for {
		select {
		case env, ok := <-in:
			if !ok {
				m.disconnected()

				return
			}

			m.logger.Tracef("WsReceiver: %s", spew.Sdump(env))

			if env.Ref != "" && m.deliver(env) {
				continue
			}

			m.handleEvent(env)
		case <-ctx.Done():
			m.logger.Debugf("wsReceiver: ctx.Done() triggered")

			return
		}
	}
}

func (m *Client) send(env *envelope) error {
	m.RLock()
	conn := m.conn
	m.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck

	return conn.WriteJSON(env)
}

// request sends op and waits for the reply with the same ref. A cancelled ctx
// drops the pending entry; a late reply is then handled as an event and
// ignored.
func (m *Client) request(ctx context.Context, op string, p model.Payload) (*envelope, error) {
	ref := uuid.New().String()
	ch := make(chan *envelope, 1)

	m.pendingMu.Lock()
	if !m.Connected() {
		m.pendingMu.Unlock()

		return nil, ErrNotConnected
	}
	m.pending[ref] = ch
	m.pendingMu.Unlock()

	defer m.forget(ref)

	m.logger.Debugf("request %s ref %s", op, ref)

	if err := m.send(&envelope{Op: op, P: p, Ref: ref, V: protocolVersion}); err != nil {
		return nil, fmt.Errorf("dogeclient.request %s: %w", op, err)
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return nil, ErrNotConnected
		}

		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Client) deliver(env *envelope) bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	ch, ok := m.pending[env.Ref]
	if !ok {
		return false
	}

	delete(m.pending, env.Ref)
	ch <- env

	return true
}

func (m *Client) forget(ref string) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	delete(m.pending, ref)
}

func (m *Client) pendingCount() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	return len(m.pending)
}

// disconnected fails every waiting request and tells the consumer.
func (m *Client) disconnected() {
	m.Lock()
	wasConnected := m.WsConnected
	m.WsConnected = false
	m.Unlock()

	m.pendingMu.Lock()
	for ref, ch := range m.pending {
		close(ch)
		delete(m.pending, ref)
	}
	m.pendingMu.Unlock()

	if wasConnected {
		m.logger.Info("connection closed")
		m.emit(bridge.EventLogout, &bridge.LogoutEvent{})
	}
}

// emit queues an event for the consumer. It never blocks, so replies keep
// flowing while nobody reads EventChan.
func (m *Client) emit(typ string, data interface{}) {
	m.queueMu.Lock()
	m.queue = append(m.queue, &bridge.Event{Type: typ, Data: data})
	m.queueMu.Unlock()

	select {
	case m.queueNotify <- struct{}{}:
	default:
	}
}

// pump moves queued events to EventChan in order.
func (m *Client) pump() {
	for range m.queueNotify {
		for {
			m.queueMu.Lock()
			if len(m.queue) == 0 {
				m.queueMu.Unlock()

				break
			}

			ev := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.queueMu.Unlock()

			m.EventChan <- ev
		}
	}
}

func (m *Client) queued() int {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	return len(m.queue)
}

func (m *Client) Events() <-chan *bridge.Event {
	return m.EventChan
}

// Session returns the state shared with command handlers.
func (m *Client) Session() *model.Client {
	return m.session
}

func (m *Client) Connected() bool {
	m.RLock()
	defer m.RUnlock()

	return m.WsConnected
}

// Logout closes the websocket and stops the receiver.
func (m *Client) Logout() error {
	m.Lock()
	conn := m.conn
	cancel := m.cancel
	m.conn = nil
	m.Unlock()

	if conn == nil {
		return nil
	}

	m.logger.Debug("closing websocket")

	m.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage, //nolint:errcheck
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	m.writeMu.Unlock()

	err := conn.Close()

	m.disconnected()

	if cancel != nil {
		cancel()
	}

	return err
}

// SetLogLevel tries to parse the specified level and if successful sets
// the log level accordingly. Accepted levels are: 'trace', 'debug', 'info',
// 'warn', 'error', 'fatal' and 'panic'.
func (m *Client) SetLogLevel(level string) {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		m.logger.Warnf("Failed to parse specified log-level '%s': %#v", level, err)
	} else {
		m.rootLogger.SetLevel(l)
	}
}

func firstNonNil(a, b interface{}) interface{} {
	if a != nil {
		return a
	}

	return b
}
