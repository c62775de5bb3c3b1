// Package redis keeps login challenges and OAuth link requests in Redis so
// several service instances can share them. Keys expire on their own.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "storefront:"

// incrementAttempts bumps the counter only when the challenge still exists,
// then returns the whole hash.
var incrementAttempts = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'attempts', 1)
return redis.call('HGETALL', KEYS[1])
`)

type Challenges struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ store.Challenges = (*Challenges)(nil)

func New(rdb goredis.UniversalClient, prefix string) *Challenges {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Challenges{rdb: rdb, prefix: prefix}
}

// Open connects with opts and checks the connection.
func Open(ctx context.Context, opts *goredis.Options, prefix string) (*Challenges, error) {
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return New(rdb, prefix), nil
}

func (c *Challenges) Close() error { return c.rdb.Close() }

func (c *Challenges) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Challenges) totpKey(userID string) string { return c.prefix + "totp:" + userID }
func (c *Challenges) linkKey(state string) string  { return c.prefix + "link:" + state }

func (c *Challenges) PutTOTPChallenge(ctx context.Context, ch domain.TOTPChallenge) error {
	key := c.totpKey(ch.UserID)
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			"user_id", ch.UserID,
			"attempts", ch.Attempts,
			"created_at", ch.CreatedAt.UTC().Format(time.RFC3339Nano),
			"expires_at", ch.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		p.PExpireAt(ctx, key, ch.ExpiresAt)
		return nil
	})
	return err
}

func (c *Challenges) GetTOTPChallenge(ctx context.Context, userID string) (domain.TOTPChallenge, error) {
	fields, err := c.rdb.HGetAll(ctx, c.totpKey(userID)).Result()
	if err != nil {
		return domain.TOTPChallenge{}, err
	}
	if len(fields) == 0 {
		return domain.TOTPChallenge{}, store.ErrNotFound
	}
	return decodeChallenge(fields)
}

func (c *Challenges) IncrementTOTPAttempts(ctx context.Context, userID string) (domain.TOTPChallenge, error) {
	res, err := incrementAttempts.Run(ctx, c.rdb, []string{c.totpKey(userID)}).Slice()
	if errors.Is(err, goredis.Nil) {
		return domain.TOTPChallenge{}, store.ErrNotFound
	}
	if err != nil {
		return domain.TOTPChallenge{}, err
	}

	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		k, _ := res[i].(string)
		v, _ := res[i+1].(string)
		fields[k] = v
	}
	return decodeChallenge(fields)
}

func (c *Challenges) DeleteTOTPChallenge(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.totpKey(userID)).Err()
}

type linkRecord struct {
	StateHash string    `json:"state_hash"`
	UserID    string    `json:"user_id,omitempty"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Challenges) PutLinkRequest(ctx context.Context, l domain.LinkRequest) error {
	data, err := json.Marshal(linkRecord(l))
	if err != nil {
		return err
	}

	err = c.rdb.SetArgs(ctx, c.linkKey(l.StateHash), data, goredis.SetArgs{
		Mode:     "NX",
		ExpireAt: l.ExpiresAt,
	}).Err()
	if errors.Is(err, goredis.Nil) {
		return store.ErrAlreadyExists
	}
	return err
}

func (c *Challenges) TakeLinkRequest(ctx context.Context, stateHash string) (domain.LinkRequest, error) {
	data, err := c.rdb.GetDel(ctx, c.linkKey(stateHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.LinkRequest{}, store.ErrNotFound
	}
	if err != nil {
		return domain.LinkRequest{}, err
	}

	var rec linkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.LinkRequest{}, err
	}
	return domain.LinkRequest(rec), nil
}

// DeleteExpired is a no-op: Redis drops keys when their TTL runs out.
func (c *Challenges) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func decodeChallenge(fields map[string]string) (domain.TOTPChallenge, error) {
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return domain.TOTPChallenge{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return domain.TOTPChallenge{}, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return domain.TOTPChallenge{}, err
	}

	return domain.TOTPChallenge{
		UserID:    fields["user_id"],
		Attempts:  attempts,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}
