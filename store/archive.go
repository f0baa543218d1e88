// Package store keeps mined blocks outside of the miner's memory: a Redis
// archive of whole blocks and a Postgres index of receipts. Both implement
// miner.BlockSink.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.dedis.ch/streamchain/blockchain/block"
	"golang.org/x/xerrors"
)

var ErrNotArchived = errors.New("block not archived")

const (
	headKey        = "head"
	blockKeyPrefix = "block:"
	hashKeyPrefix  = "block:hash:"
)

func blockKey(number uint32) string {
	return blockKeyPrefix + strconv.FormatUint(uint64(number), 10)
}

// RedisArchive stores blocks as JSON, without their world state
type RedisArchive struct {
	rdb redis.Cmdable
}

func NewRedisArchive(rdb redis.Cmdable) *RedisArchive {
	return &RedisArchive{rdb: rdb}
}

// StoreBlock writes the block under its number and hash and moves head
func (a *RedisArchive) StoreBlock(ctx context.Context, b *block.Block) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return xerrors.Errorf("marshal block %d: %w", b.Header.Number, err)
	}
	number := strconv.FormatUint(uint64(b.Header.Number), 10)
	_, err = a.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, blockKey(b.Header.Number), raw, 0)
		pipe.Set(ctx, hashKeyPrefix+b.Hash(), number, 0)
		pipe.Set(ctx, headKey, number, 0)
		return nil
	})
	if err != nil {
		return xerrors.Errorf("archive block %d: %w", b.Header.Number, err)
	}
	return nil
}

// Head is the number of the last archived block
func (a *RedisArchive) Head(ctx context.Context) (uint32, error) {
	raw, err := a.rdb.Get(ctx, headKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotArchived
	}
	if err != nil {
		return 0, xerrors.Errorf("read head: %w", err)
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, xerrors.Errorf("corrupted head %q: %w", raw, err)
	}
	return uint32(n), nil
}

// LoadBlock returns the archived block; its State is nil
func (a *RedisArchive) LoadBlock(ctx context.Context, number uint32) (*block.Block, error) {
	raw, err := a.rdb.Get(ctx, blockKey(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.Errorf("block %d: %w", number, ErrNotArchived)
	}
	if err != nil {
		return nil, xerrors.Errorf("read block %d: %w", number, err)
	}
	b := &block.Block{}
	if err := json.Unmarshal(raw, b); err != nil {
		return nil, xerrors.Errorf("unmarshal block %d: %w", number, err)
	}
	return b, nil
}

func (a *RedisArchive) LoadBlockByHash(ctx context.Context, hash string) (*block.Block, error) {
	raw, err := a.rdb.Get(ctx, hashKeyPrefix+hash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.Errorf("block %s: %w", hash, ErrNotArchived)
	}
	if err != nil {
		return nil, xerrors.Errorf("read block %s: %w", hash, err)
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, xerrors.Errorf("corrupted number %q for %s: %w", raw, hash, err)
	}
	return a.LoadBlock(ctx, uint32(n))
}
