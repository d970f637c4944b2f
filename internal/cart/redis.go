package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session cart in a hash cart:session:<sid>, one
// field per product, so every instance behind a load balancer sees it.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

const maxWatchRetries = 5

func key(owner string) string { return "cart:session:" + owner }

// update runs fn over the owner's lines under WATCH and writes back the result.
func (s *RedisStore) update(ctx context.Context, owner string, fn func(map[string]Line) error) error {
	k := key(owner)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGetAll(ctx, k).Result()
		if err != nil {
			return err
		}
		lines := make(map[string]Line, len(raw))
		for field, v := range raw {
			var l Line
			if err := json.Unmarshal([]byte(v), &l); err != nil {
				return err
			}
			lines[field] = l
		}
		if err := fn(lines); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			for field, l := range lines {
				b, err := json.Marshal(l)
				if err != nil {
					return err
				}
				pipe.HSet(ctx, k, field, b)
			}
			if len(lines) > 0 {
				pipe.Expire(ctx, k, s.ttl)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

func (s *RedisStore) Add(ctx context.Context, owner string, l Line) (Line, error) {
	var out Line
	err := s.update(ctx, owner, func(lines map[string]Line) error {
		if cur, ok := lines[l.ProductID]; ok {
			cur.Quantity += l.Quantity
			cur.ProductName, cur.ProductImage, cur.ProductPrice = l.ProductName, l.ProductImage, l.ProductPrice
			lines[l.ProductID] = cur
			out = cur
			return nil
		}
		l.ID = uuid.NewString()
		l.Owner = owner
		l.AddedAt = time.Now().UTC()
		lines[l.ProductID] = l
		out = l
		return nil
	})
	return out, err
}

func (s *RedisStore) List(ctx context.Context, owner string) ([]Line, error) {
	raw, err := s.rdb.HGetAll(ctx, key(owner)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(raw))
	for _, v := range raw {
		var l Line
		if err := json.Unmarshal([]byte(v), &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	sortByAdded(out)
	return out, nil
}

func (s *RedisStore) Remove(ctx context.Context, owner, lineID string) error {
	return s.update(ctx, owner, func(lines map[string]Line) error {
		for field, l := range lines {
			if l.ID == lineID {
				delete(lines, field)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *RedisStore) SetQuantity(ctx context.Context, owner, lineID string, qty int) error {
	return s.update(ctx, owner, func(lines map[string]Line) error {
		for field, l := range lines {
			if l.ID == lineID {
				l.Quantity = qty
				lines[field] = l
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	return s.rdb.Del(ctx, key(owner)).Err()
}

func (s *RedisStore) ReplaceProducts(ctx context.Context, owner string, in []Line) error {
	return s.update(ctx, owner, func(lines map[string]Line) error {
		for _, l := range in {
			if cur, ok := lines[l.ProductID]; ok {
				l.ID, l.AddedAt = cur.ID, cur.AddedAt
			} else {
				l.ID = uuid.NewString()
			}
			l.Owner = owner
			lines[l.ProductID] = l
		}
		return nil
	})
}
