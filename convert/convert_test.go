package convert

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/42wim/matterdoge/model"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUser(ctx context.Context, idOrUsername string) (model.Payload, bool, error) {
	args := m.Called(ctx, idOrUsername)

	p, _ := args.Get(0).(model.Payload)

	return p, args.Bool(1), args.Error(2)
}

func alice() model.Payload {
	return model.Payload{
		"id":           "a1b2",
		"username":     "alice",
		"displayName":  "Alice A.",
		"avatarUrl":    "https://cdn.example/alice.png",
		"lastOnline":   "2021-03-20T19:18:57Z",
		"numFollowers": float64(42),
	}
}

func newContext(f model.UserFetcher) *model.Context {
	msg, _ := model.NewMessage("m1", nil, false, model.Message{}.CreatedAt, model.NewBaseUser("u1", "bob", "Bob", ""))

	return model.NewContext(model.NewClient(f, "!"), msg)
}

func TestResolveMentionShapes(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "alice").Return(alice(), true, nil)

	mc := newContext(f)
	ctx := context.Background()

	preview, err := Default.ResolvePreview(ctx, mc, "@alice")
	require.NoError(t, err)
	assert.Equal(t, model.UserPreview{ID: "a1b2", DisplayName: "Alice A.", NumFollowers: 42}, preview)

	base, err := Default.ResolveBaseUser(ctx, mc, "@alice")
	require.NoError(t, err)
	assert.Equal(t, model.NewBaseUser("a1b2", "alice", "Alice A.", "https://cdn.example/alice.png"), base)
	assert.Equal(t, "@alice", base.Mention)

	user, err := Default.ResolveUser(ctx, mc, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ToBaseUser(), base)
	assert.Equal(t, user.ToPreview(), preview)

	// one lookup per resolution
	f.AssertNumberOfCalls(t, "FetchUser", 3)
}

func TestResolveRawID(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "a1b2").Return(alice(), true, nil).Once()

	v, err := Default.Resolve(context.Background(), newContext(f), Param{Name: "target", Shape: ShapeUser}, " a1b2 ")
	require.NoError(t, err)

	u, ok := v.(model.User)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	f.AssertExpectations(t)
}

func TestResolveNotFound(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "ghost").Return(nil, false, nil).Once()

	mc := newContext(f)

	v, err := Default.Resolve(context.Background(), mc, Param{Name: "user", Shape: ShapeUserPreview}, "@ghost")
	assert.Nil(t, v)
	assert.True(t, errors.Is(err, model.ErrUserNotFound))

	var nf *model.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ghost", nf.Ref)
	f.AssertExpectations(t)
}

func TestResolveTypedNotFoundIsZero(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "ghost").Return(nil, false, nil)

	u, err := Default.ResolveUser(context.Background(), newContext(f), "@ghost")
	assert.True(t, errors.Is(err, model.ErrUserNotFound))
	assert.Equal(t, model.User{}, u)
}

func TestResolveTransportError(t *testing.T) {
	boom := errors.New("socket closed")

	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "alice").Return(nil, false, boom).Once()

	_, err := Default.ResolveUser(context.Background(), newContext(f), "@alice")
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, model.ErrUserNotFound))
	f.AssertExpectations(t)
}

func TestResolveMalformedUser(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "alice").Return(model.Payload{"username": "alice"}, true, nil)

	_, err := Default.ResolveUser(context.Background(), newContext(f), "@alice")
	assert.True(t, errors.Is(err, model.ErrMalformedPayload))
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	f := &mockFetcher{}
	// the transport answers even though the caller went away
	f.On("FetchUser", mock.Anything, "alice").Run(func(mock.Arguments) { cancel() }).Return(alice(), true, nil)

	v, err := Default.Resolve(ctx, newContext(f), Param{Shape: ShapeUser}, "@alice")
	assert.Nil(t, v)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResolveCancelPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &mockFetcher{}
	f.On("FetchUser", mock.MatchedBy(func(c context.Context) bool { return c.Err() != nil }), "alice").
		Return(nil, false, context.Canceled)

	_, err := Default.ResolveBaseUser(ctx, newContext(f), "@alice")
	assert.True(t, errors.Is(err, context.Canceled))
	f.AssertExpectations(t)
}

func TestResolveBadInput(t *testing.T) {
	f := &mockFetcher{}
	mc := newContext(f)

	_, err := Default.Resolve(context.Background(), mc, Param{Shape: ShapeUser}, "@")
	assert.True(t, errors.Is(err, ErrEmptyArgument))

	_, err = Default.Resolve(context.Background(), mc, Param{Shape: "Room"}, "alice")
	assert.True(t, errors.Is(err, ErrUnknownShape))

	_, err = Default.Resolve(context.Background(), newContext(nil), Param{Shape: ShapeUser}, "alice")
	assert.True(t, errors.Is(err, ErrNoTransport))

	f.AssertNotCalled(t, "FetchUser", mock.Anything, mock.Anything)
}

func TestRegistryCustomShape(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "alice").Return(alice(), true, nil)

	reg := NewRegistry()
	reg.Register("Mention", func(u model.User) interface{} { return u.Mention })

	v, err := New(reg).Resolve(context.Background(), newContext(f), Param{Shape: "Mention"}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "@alice", v)

	// Default is not affected
	_, err = Default.Resolve(context.Background(), newContext(f), Param{Shape: "Mention"}, "alice")
	assert.True(t, errors.Is(err, ErrUnknownShape))

	// a replaced built-in that returns another type is reported, not panicked on
	reg.Register(ShapeUser, func(u model.User) interface{} { return u.Username })
	_, err = New(reg).ResolveUser(context.Background(), newContext(f), "alice")
	assert.Error(t, err)
}

func TestResolveConcurrent(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchUser", mock.Anything, "alice").Return(alice(), true, nil)
	f.On("FetchUser", mock.Anything, "ghost").Return(nil, false, nil)

	mc := newContext(f)

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			p, err := Default.ResolvePreview(context.Background(), mc, "@alice")
			assert.NoError(t, err)
			assert.Equal(t, "a1b2", p.ID)
		}()

		go func() {
			defer wg.Done()

			_, err := Default.ResolveUser(context.Background(), mc, "@ghost")
			assert.True(t, errors.Is(err, model.ErrUserNotFound))
		}()
	}

	wg.Wait()
	f.AssertNumberOfCalls(t, "FetchUser", 40)
}
