package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"guessgame-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PlayerStore persists players in Redis.
// Layout:
//   - HSET guess:player:{id} name {displayName} score {score} joined {RFC3339Nano}
//   - ZADD NX guess:players {seq} {id}      (registration order, seq from INCRBY guess:players:seq)
//   - ZADD guess:leaderboard {score} {id}   (for external leaderboard readers)
type PlayerStore struct {
	client *redis.Client
}

const (
	playersKey     = "guess:players"
	sequenceKey    = "guess:players:seq"
	leaderboardKey = "guess:leaderboard"
)

func NewPlayerStore(client *redis.Client) *PlayerStore {
	return &PlayerStore{client: client}
}

func (s *PlayerStore) LoadPlayers(ctx context.Context) ([]domain.Player, error) {
	ids, err := s.client.ZRange(ctx, playersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.playerKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	players := make([]domain.Player, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		score, _ := strconv.Atoi(fields["score"])
		var joined time.Time
		_ = joined.UnmarshalText([]byte(fields["joined"]))
		players = append(players, domain.Player{
			ID:          id,
			DisplayName: fields["name"],
			Score:       score,
			Registered:  true,
			JoinedAt:    joined,
		})
	}
	return players, nil
}

// SavePlayers writes players given in registration order. Players seen for the
// first time get the next sequence numbers; known players keep theirs.
func (s *PlayerStore) SavePlayers(ctx context.Context, players []domain.Player) error {
	if len(players) == 0 {
		return nil
	}
	fresh, err := s.unknown(ctx, players)
	if err != nil {
		return err
	}
	var seq int64
	if len(fresh) > 0 {
		end, err := s.client.IncrBy(ctx, sequenceKey, int64(len(fresh))).Result()
		if err != nil {
			return fmt.Errorf("reserve player sequence: %w", err)
		}
		seq = end - int64(len(fresh))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, p := range players {
			joined, err := p.JoinedAt.UTC().MarshalText()
			if err != nil {
				return fmt.Errorf("encode join date for %s: %w", p.ID, err)
			}
			pipe.HSet(ctx, s.playerKey(p.ID),
				"name", p.DisplayName,
				"score", p.Score,
				"joined", string(joined),
			)
			if fresh[i] {
				seq++
				pipe.ZAddNX(ctx, playersKey, redis.Z{Score: float64(seq), Member: p.ID})
			}
			pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(p.Score), Member: p.ID})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save players: %w", err)
	}
	return nil
}

// unknown reports, per player, whether it has no registration sequence yet.
func (s *PlayerStore) unknown(ctx context.Context, players []domain.Player) (map[int]bool, error) {
	pipe := s.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(players))
	for i, p := range players {
		cmds[i] = pipe.ZScore(ctx, playersKey, p.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("check players: %w", err)
	}
	fresh := make(map[int]bool)
	for i, cmd := range cmds {
		if errors.Is(cmd.Err(), redis.Nil) {
			fresh[i] = true
		}
	}
	return fresh, nil
}

func (s *PlayerStore) playerKey(id string) string {
	return "guess:player:" + id
}
