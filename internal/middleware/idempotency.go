package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-booking/internal/config"
)

const (
	replayHeader = "Idempotent-Replayed"
	lockTTL      = 30 * time.Second
)

// ResponseStore keeps captured responses for idempotent replay.  Reserve
// takes a short-lived lock so two in-flight requests with the same key
// cannot both reach the handler.
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisStore is the ResponseStore used in production.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bs, true, nil
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key+":lock", 1, ttl).Result()
}

func (s *RedisStore) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return s.rdb.SetEx(ctx, key, payload, ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key+":lock").Err()
}

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	buf   bytes.Buffer
	size  int64
	limit int64
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// NewIdempotency wires Idempotency to Redis.  Without a client or when
// disabled it passes requests straight through.
func NewIdempotency(cfg config.IdempotencyConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return Idempotency(cfg, NewRedisStore(rdb))
}

// Idempotency replays the stored response for a repeated Idempotency-Key
// from the same user on the same route.  Only 2xx responses are stored, so
// a failed booking attempt may be retried with the same key.
func Idempotency(cfg config.IdempotencyConfig, store ResponseStore) echo.MiddlewareFunc {
	header := cfg.Header
	if header == "" {
		header = "Idempotency-Key"
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idemKey := strings.TrimSpace(c.Request().Header.Get(header))
			if idemKey == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			key := idempotencyKey(cfg.Prefix, c, idemKey)

			if bs, ok, err := store.Get(ctx, key); err == nil && ok {
				if status, hdr, body, ok := decodePayload(bs); ok {
					return replay(c, status, hdr, body)
				}
			} else if err != nil {
				c.Logger().Warnf("[idempotency] store get failed: %v", err)
				return next(c)
			}

			reserved, err := store.Reserve(ctx, key, lockTTL)
			if err != nil {
				c.Logger().Warnf("[idempotency] store reserve failed: %v", err)
				return next(c)
			}
			if !reserved {
				return c.JSON(http.StatusConflict, echo.Map{"error": "a request with this idempotency key is in progress"})
			}
			defer func() { _ = store.Release(context.WithoutCancel(ctx), key) }()

			cw := &captureWriter{ResponseWriter: c.Response().Writer, limit: maxBody}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}

			res := c.Response()
			if !res.Committed || res.Status < 200 || res.Status >= 300 {
				return nil
			}
			if maxBody > 0 && cw.size > maxBody {
				return nil
			}
			payload, err := encodePayload(res.Status, res.Header().Clone(), cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := store.Save(context.WithoutCancel(ctx), key, payload, cfg.TTL); err != nil {
				c.Logger().Warnf("[idempotency] store save failed: %v", err)
			}
			return nil
		}
	}
}

func idempotencyKey(prefix string, c echo.Context, idemKey string) string {
	tail := strings.Join([]string{userID(c), c.Request().Method, c.Request().URL.Path, idemKey}, "|")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

func replay(c echo.Context, status int, hdr http.Header, body []byte) error {
	for k, vals := range hdr {
		if strings.EqualFold(k, "Content-Length") {
			continue
		}
		for _, v := range vals {
			c.Response().Header().Add(k, v)
		}
	}
	c.Response().Header().Set(replayHeader, "true")
	c.Response().WriteHeader(status)
	if len(body) > 0 {
		_, _ = c.Response().Write(body)
	}
	return nil
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}
