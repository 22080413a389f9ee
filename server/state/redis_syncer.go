package state

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"modelmove/logger"
)

const defaultRedisKey = "modelmove:state"

type RedisSyncer struct {
	client *redis.Client
	key    string
}

type RedisOption func(*RedisSyncer)

func WithKey(key string) RedisOption {
	return func(rs *RedisSyncer) {
		rs.key = key
	}
}

func (rs *RedisSyncer) Get(ctx context.Context) (*ProjectState, error) {
	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if err == redis.Nil {
		return NewProjectState(), nil
	}
	if err != nil {
		return nil, storageError(errors.Wrapf(err, "failed to read state key '%s'", rs.key))
	}
	projectState := NewProjectState()
	if err := json.Unmarshal(data, projectState); err != nil {
		return nil, storageError(errors.Wrapf(err, "failed to decode state key '%s'", rs.key))
	}
	if projectState.Models == nil {
		projectState.Models = make(map[string]*ModelState)
	}
	return projectState, nil
}

func (rs *RedisSyncer) Save(ctx context.Context, projectState *ProjectState) error {
	data, err := json.Marshal(projectState)
	if err != nil {
		return storageError(errors.Wrap(err, "failed to encode state"))
	}
	if err := rs.client.Set(ctx, rs.key, data, 0).Err(); err != nil {
		return storageError(errors.Wrapf(err, "failed to write state key '%s'", rs.key))
	}
	logger.Debug("Saved %d model(s) to redis key '%s'", len(projectState.Models), rs.key)
	return nil
}

func NewRedisSyncer(client *redis.Client, opts ...RedisOption) *RedisSyncer {
	syncer := &RedisSyncer{client: client, key: defaultRedisKey}
	for _, opt := range opts {
		opt(syncer)
	}
	return syncer
}

//Builds a syncer from a redis:// URL
func NewRedisSyncerFromUrl(url string, opts ...RedisOption) (*RedisSyncer, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, storageError(errors.Wrapf(err, "invalid redis url '%s'", url))
	}
	return NewRedisSyncer(redis.NewClient(options), opts...), nil
}
