package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"genai-chatbot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DriverRedis = "redis"

	turnsKeyPrefix   = "chat:turns:"
	contextKeyPrefix = "chat:context:"
	sessionsKey      = "chat:sessions"
)

// redisTurn is the JSON form of a turn inside a session list.
type redisTurn struct {
	Id              uuid.UUID `json:"id"`
	SessionId       string    `json:"session_id"`
	UserMessage     string    `json:"user_message"`
	BotResponse     string    `json:"bot_response"`
	DocumentContext *string   `json:"document_context"`
	CreatedAt       time.Time `json:"timestamp"`
}

// RedisStore keeps each session as a list of JSON turns. Session ids live in a
// sorted set scored by expiry time, or zero when sessions never expire.
// Every append refreshes the ttl of the session's keys.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ ContextStore = (*RedisStore)(nil)

// NewRedisStore creates a redis-backed store. A ttl of zero keeps sessions forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) Name() string {
	return DriverRedis
}

func (s *RedisStore) AppendTurn(ctx context.Context, turn *entity.ChatTurn) (uuid.UUID, error) {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(redisTurn{
		Id:              turn.Id,
		SessionId:       turn.SessionId,
		UserMessage:     turn.UserMessage,
		BotResponse:     turn.BotResponse,
		DocumentContext: turn.DocumentContext,
		CreatedAt:       turn.CreatedAt,
	})
	if err != nil {
		return uuid.Nil, wrap(DriverRedis, "append turn", err)
	}

	turnsKey := turnsKeyPrefix + turn.SessionId
	contextKey := contextKeyPrefix + turn.SessionId

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, turnsKey, val)
		pipe.ZAdd(ctx, sessionsKey, redis.Z{Score: s.expiryScore(), Member: turn.SessionId})
		if turn.HasDocumentContext() {
			pipe.Set(ctx, contextKey, *turn.DocumentContext, s.ttl)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, turnsKey, s.ttl)
			pipe.Expire(ctx, contextKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, wrap(DriverRedis, "append turn", err)
	}
	return turn.Id, nil
}

func (s *RedisStore) GetTurns(ctx context.Context, sessionID string) ([]*entity.ChatTurn, error) {
	turns, err := s.readTurns(ctx, sessionID, 0)
	if err != nil {
		return nil, wrap(DriverRedis, "get turns", err)
	}
	return turns, nil
}

func (s *RedisStore) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error) {
	turns, err := s.readTurns(ctx, sessionID, limit)
	if err != nil {
		return nil, wrap(DriverRedis, "get recent turns", err)
	}
	return tailTurns(turns, limit), nil
}

func (s *RedisStore) GetLatestDocumentContext(ctx context.Context, sessionID string) (*string, error) {
	val, err := s.client.Get(ctx, contextKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(DriverRedis, "get latest document context", err)
	}
	if val == "" {
		return nil, nil
	}
	return &val, nil
}

// ListSessionIDs drops expired sessions from the index before listing it.
func (s *RedisStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	if s.ttl <= 0 {
		ids, err := s.client.ZRange(ctx, sessionsKey, 0, -1).Result()
		if err != nil {
			return nil, wrap(DriverRedis, "list sessions", err)
		}
		return ids, nil
	}

	now := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, sessionsKey, "-inf", "("+now).Err(); err != nil {
		return nil, wrap(DriverRedis, "list sessions", err)
	}
	ids, err := s.client.ZRangeByScore(ctx, sessionsKey, &redis.ZRangeBy{Min: now, Max: "+inf"}).Result()
	if err != nil {
		return nil, wrap(DriverRedis, "list sessions", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// expiryScore is the unix time a session expires at, or zero without a ttl.
func (s *RedisStore) expiryScore() float64 {
	if s.ttl <= 0 {
		return 0
	}
	return float64(s.now().Add(s.ttl).Unix())
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// readTurns loads the tail of a session list, or all of it when limit <= 0.
func (s *RedisStore) readTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	// The tail is taken in insertion order and sorted afterwards, so appends
	// landing out of timestamp order can shift the window slightly. Accepted.
	vals, err := s.client.LRange(ctx, turnsKeyPrefix+sessionID, start, -1).Result()
	if err != nil {
		return nil, err
	}

	turns := make([]*entity.ChatTurn, 0, len(vals))
	for _, val := range vals {
		var rt redisTurn
		if err := json.Unmarshal([]byte(val), &rt); err != nil {
			return nil, err
		}
		turns = append(turns, &entity.ChatTurn{
			Id:              rt.Id,
			SessionId:       rt.SessionId,
			UserMessage:     rt.UserMessage,
			BotResponse:     rt.BotResponse,
			DocumentContext: rt.DocumentContext,
			CreatedAt:       rt.CreatedAt,
		})
	}

	sortTurns(turns)
	return turns, nil
}
