package cache

import (
	"commonroom/storage/models"
	"context"
	"encoding/json"
	"errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"time"
)

const IdentityByIdRedisKey = "identity:id:"
const IdentityByHandleRedisKey = "identity:handle:"
const DeletedIdentityRedisKey = "identity:deleted:"

// putScript writes both lookup keys unless the id carries a deletion marker.
var putScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call("SET", KEYS[2], ARGV[1], "PX", ttl)
	redis.call("SET", KEYS[3], ARGV[2], "PX", ttl)
else
	redis.call("SET", KEYS[2], ARGV[1])
	redis.call("SET", KEYS[3], ARGV[2])
end
return 1
`)

// IdentityCache keeps recently resolved identity snapshots so reconciliation
// passes don't hit the store for every embedded reference.
type IdentityCache interface {
	Get(ctx context.Context, id string) (models.IdentitySnapshot, bool)
	GetByHandle(ctx context.Context, handle string) (models.IdentitySnapshot, bool)
	Put(ctx context.Context, snapshot models.IdentitySnapshot)
	// Invalidate drops a deleted user. Puts for the same id are ignored for
	// one expiration period so a read that loaded the user before the delete
	// cannot bring it back.
	Invalidate(ctx context.Context, snapshot models.IdentitySnapshot)
}

type RedisIdentityCache struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewRedisIdentityCache(options *redis.Options, expiration time.Duration) *RedisIdentityCache {
	return &RedisIdentityCache{
		redisClient: redis.NewClient(options),
		expiration:  expiration,
	}
}

func (c *RedisIdentityCache) Get(ctx context.Context, id string) (models.IdentitySnapshot, bool) {
	var snapshot models.IdentitySnapshot
	bytes, err := c.redisClient.Get(ctx, IdentityByIdRedisKey+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warningf("Error reading identity '%s' from cache: %v", id, err)
		}
		return snapshot, false
	}
	if err = json.Unmarshal(bytes, &snapshot); err != nil {
		log.Warningf("Error decoding cached identity '%s': %v", id, err)
		return snapshot, false
	}
	return snapshot, true
}

func (c *RedisIdentityCache) GetByHandle(ctx context.Context, handle string) (models.IdentitySnapshot, bool) {
	id, err := c.redisClient.Get(ctx, IdentityByHandleRedisKey+handle).Result()
	if err != nil {
		return models.IdentitySnapshot{}, false
	}
	snapshot, ok := c.Get(ctx, id)
	if !ok || snapshot.Username != handle {
		return models.IdentitySnapshot{}, false
	}
	return snapshot, true
}

func (c *RedisIdentityCache) Put(ctx context.Context, snapshot models.IdentitySnapshot) {
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("Error encoding identity '%s': %v", snapshot.UserID, err)
		return
	}

	keys := []string{
		DeletedIdentityRedisKey + snapshot.UserID,
		IdentityByIdRedisKey + snapshot.UserID,
		IdentityByHandleRedisKey + snapshot.Username,
	}
	stored, err := putScript.Run(ctx, c.redisClient, keys, bytes, snapshot.UserID, c.expiration.Milliseconds()).Int()
	if err != nil {
		log.Warningf("Error caching identity '%s': %v", snapshot.UserID, err)
		return
	}
	if stored == 0 {
		log.Debugf("Skipped caching deleted identity '%s'", snapshot.UserID)
	}
}

func (c *RedisIdentityCache) Invalidate(ctx context.Context, snapshot models.IdentitySnapshot) {
	pipe := c.redisClient.TxPipeline()
	pipe.Set(ctx, DeletedIdentityRedisKey+snapshot.UserID, 1, c.expiration)
	pipe.Del(ctx, IdentityByIdRedisKey+snapshot.UserID)
	if snapshot.Username != "" {
		pipe.Del(ctx, IdentityByHandleRedisKey+snapshot.Username)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warningf("Error invalidating identity '%s': %v", snapshot.UserID, err)
	}
}

func (c *RedisIdentityCache) Close() error {
	return c.redisClient.Close()
}

// NopIdentityCache is used when no Redis address is configured.
type NopIdentityCache struct{}

func (NopIdentityCache) Get(context.Context, string) (models.IdentitySnapshot, bool) {
	return models.IdentitySnapshot{}, false
}

func (NopIdentityCache) GetByHandle(context.Context, string) (models.IdentitySnapshot, bool) {
	return models.IdentitySnapshot{}, false
}

func (NopIdentityCache) Put(context.Context, models.IdentitySnapshot) {}

func (NopIdentityCache) Invalidate(context.Context, models.IdentitySnapshot) {}
