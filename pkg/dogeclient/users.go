package dogeclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/42wim/matterdoge/model"
)

// FetchUser looks a user up by id or username. Users seen recently come
// from the cache, otherwise one user:get_info request is sent. While
// disconnected the Directory answers, if there is one.
func (m *Client) FetchUser(ctx context.Context, idOrUsername string) (model.Payload, bool, error) {
	if p, ok := m.cached(idOrUsername); ok {
		m.logger.Debugf("FetchUser(%s): cache hit", idOrUsername)

		return p, true, nil
	}

	if !m.Connected() {
		if m.Directory != nil {
			m.logger.Debugf("FetchUser(%s): not connected, asking directory", idOrUsername)

			return m.Directory.FetchUser(ctx, idOrUsername)
		}

		return nil, false, ErrNotConnected
	}

	reply, err := m.request(ctx, opGetUser, model.Payload{"userIdOrUsername": idOrUsername})
	if err != nil {
		return nil, false, err
	}

	p := unwrap(reply.data(), "user")
	if reply.E != nil || len(p) == 0 || p["error"] != nil {
		m.logger.Debugf("FetchUser(%s): not found", idOrUsername)

		return nil, false, nil
	}

	m.remember(p)

	return p, true, nil
}

type cacheEntry struct {
	user    model.Payload
	fetched time.Time
}

// cached returns a user payload seen less than cacheTTL ago. Older entries
// are dropped so presence and follower counts get refreshed.
func (m *Client) cached(ref string) (model.Payload, bool) {
	for _, key := range []string{"id:" + ref, "name:" + strings.ToLower(ref)} {
		v, ok := m.lruCache.Get(key)
		if !ok {
			continue
		}

		e, ok := v.(cacheEntry)
		if !ok || time.Since(e.fetched) >= m.cacheTTL {
			m.lruCache.Remove(key)

			continue
		}

		return e.user, true
	}

	return nil, false
}

// remember caches a user payload under its id and lowercased username and
// hands it to the directory.
func (m *Client) remember(p model.Payload) {
	id, _ := p["id"].(string)
	if id == "" {
		return
	}

	e := cacheEntry{user: p, fetched: time.Now()}
	m.lruCache.Add("id:"+id, e)

	if name, _ := p["username"].(string); name != "" {
		m.lruCache.Add("name:"+strings.ToLower(name), e)
	}

	if m.Directory != nil {
		if err := m.Directory.Put(p); err != nil {
			m.logger.Errorf("directory put %s failed: %s", id, err)
		}
	}
}

// unwrap returns p[key] when the reply nests the entity under key.
func unwrap(p model.Payload, key string) model.Payload {
	if inner, ok := toPayload(p[key]); ok {
		return inner
	}

	return p
}

func toPayload(v interface{}) (model.Payload, bool) {
	switch t := v.(type) {
	case model.Payload:
		return t, true
	case map[string]interface{}:
		return model.Payload(t), true
	}

	return nil, false
}

func toPayloads(entity, field string, v interface{}) ([]model.Payload, error) {
	if v == nil {
		return nil, nil
	}

	list, ok := v.([]interface{})
	if !ok {
		return nil, &model.PayloadError{Entity: entity, Field: field, Err: fmt.Errorf("expected list, got %T", v)}
	}

	out := make([]model.Payload, 0, len(list))

	for i, e := range list {
		p, ok := toPayload(e)
		if !ok {
			return nil, &model.PayloadError{
				Entity: entity,
				Field:  fmt.Sprintf("%s.%d", field, i),
				Err:    fmt.Errorf("expected object, got %T", e),
			}
		}

		out = append(out, p)
	}

	return out, nil
}
