// Package convert turns command arguments into users.
//
// A Resolver does exactly one lookup through the transport of the command
// context and then narrows the result to the shape the command asked for.
// Shapes are looked up in a Registry, so commands can add their own.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/42wim/matterdoge/model"
)

// Shape names the entity a command argument should become.
type Shape string

const (
	ShapeBaseUser    Shape = "BaseUser"
	ShapeUser        Shape = "User"
	ShapeUserPreview Shape = "UserPreview"
)

// Param describes a command parameter.
type Param struct {
	Name  string
	Shape Shape
}

// Narrower projects a resolved user down to a shape.
type Narrower func(model.User) interface{}

var (
	ErrEmptyArgument = errors.New("empty argument")
	ErrUnknownShape  = errors.New("unknown shape")
	ErrNoTransport   = errors.New("no transport to look up users")
)

// Registry maps shapes to narrowers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	narrowers map[Shape]Narrower
}

// NewRegistry returns a registry with the BaseUser, User and UserPreview
// shapes.
func NewRegistry() *Registry {
	r := &Registry{narrowers: make(map[Shape]Narrower)}

	r.Register(ShapeBaseUser, func(u model.User) interface{} { return u.ToBaseUser() })
	r.Register(ShapeUser, func(u model.User) interface{} { return u })
	r.Register(ShapeUserPreview, func(u model.User) interface{} { return u.ToPreview() })

	return r
}

// Register adds or replaces the narrower for shape.
func (r *Registry) Register(shape Shape, fn Narrower) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.narrowers[shape] = fn
}

func (r *Registry) lookup(shape Shape) (Narrower, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.narrowers[shape]

	return fn, ok
}

// Resolver resolves command arguments against the service.
type Resolver struct {
	registry *Registry
}

// New returns a resolver using registry, or the built-in shapes when nil.
func New(registry *Registry) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}

	return &Resolver{registry: registry}
}

// Default is the resolver with the built-in shapes.
var Default = New(nil)

// Ref strips the mention marker from a command argument.
func Ref(argument string) string {
	return strings.TrimPrefix(strings.TrimSpace(argument), "@")
}

// Resolve looks up argument (a username, "@username" or user id) and narrows
// the result to param.Shape. When nothing matches the error wraps
// model.ErrUserNotFound. A cancelled ctx never yields an entity.
func (r *Resolver) Resolve(ctx context.Context, mc *model.Context, param Param, argument string) (interface{}, error) {
	narrow, ok := r.registry.lookup(param.Shape)
	if !ok {
		return nil, fmt.Errorf("convert: %w: %q", ErrUnknownShape, param.Shape)
	}

	ref := Ref(argument)
	if ref == "" {
		return nil, fmt.Errorf("convert: %s: %w", param.Name, ErrEmptyArgument)
	}

	if mc == nil || mc.Client == nil || mc.Client.Fetcher() == nil {
		return nil, ErrNoTransport
	}

	logger.Debugf("resolving %s %q as %s", param.Name, ref, param.Shape)

	payload, found, err := mc.Client.Fetcher().FetchUser(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("convert: fetch %q: %w", ref, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, &model.NotFoundError{Ref: ref}
	}

	user, err := model.ParseUser(payload)
	if err != nil {
		return nil, err
	}

	return narrow(user), nil
}

func resolveAs[T any](ctx context.Context, r *Resolver, mc *model.Context, shape Shape, argument string) (T, error) {
	var zero T

	v, err := r.Resolve(ctx, mc, Param{Name: "user", Shape: shape}, argument)
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("convert: shape %s narrowed to %T, want %T", shape, v, zero)
	}

	return t, nil
}

// ResolveUser resolves argument to a full User.
func (r *Resolver) ResolveUser(ctx context.Context, mc *model.Context, argument string) (model.User, error) {
	return resolveAs[model.User](ctx, r, mc, ShapeUser, argument)
}

// ResolveBaseUser resolves argument to a BaseUser.
func (r *Resolver) ResolveBaseUser(ctx context.Context, mc *model.Context, argument string) (model.BaseUser, error) {
	return resolveAs[model.BaseUser](ctx, r, mc, ShapeBaseUser, argument)
}

// ResolvePreview resolves argument to a UserPreview.
func (r *Resolver) ResolvePreview(ctx context.Context, mc *model.Context, argument string) (model.UserPreview, error) {
	return resolveAs[model.UserPreview](ctx, r, mc, ShapeUserPreview, argument)
}
