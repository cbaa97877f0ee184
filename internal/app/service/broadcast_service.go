package service

import (
	"context"
	"ctf_arena/internal/domain/model"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the outbound side of the broadcast transport. The real
// transport (connection lifecycle, rooms, retries) lives behind it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", channel, err)
	}
	return nil
}

// BroadcastService fans ledger deltas out to the three audiences. Each
// audience has its own channel and only ever sees the event kinds meant
// for it: raw attempts go to admins only, achievements and challenge
// state transitions go to the game board and the players. Event payloads
// are built from the public models, which carry no flag, salt or hash.
type BroadcastService struct {
	publisher Publisher
}

func NewBroadcastService(publisher Publisher) *BroadcastService {
	return &BroadcastService{publisher: publisher}
}

func ChannelFor(audience model.Audience) string {
	return "audience:" + string(audience)
}

func (s *BroadcastService) emit(ctx context.Context, event interface{}, audiences ...model.Audience) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast event: %w", err)
	}
	for _, audience := range audiences {
		if err := s.publisher.Publish(ctx, ChannelFor(audience), payload); err != nil {
			return err
		}
	}
	return nil
}

// SubmissionRecorded notifies administrators of every raw attempt,
// correct or not.
func (s *BroadcastService) SubmissionRecorded(ctx context.Context, attempt *model.Attempt) error {
	event := model.SubmissionRecordedEvent{
		Kind:    model.EventSubmissionRecorded,
		Attempt: *attempt,
	}
	return s.emit(ctx, event, model.AudienceAdmin)
}

// AchievementRecorded updates the live scoreboard and the players; the
// admin feed receives it as well.
func (s *BroadcastService) AchievementRecorded(ctx context.Context, achievement *model.Achievement) error {
	event := model.AchievementRecordedEvent{
		Kind:        model.EventAchievementRecorded,
		Achievement: *achievement,
	}
	return s.emit(ctx, event, model.AudienceGame, model.AudiencePlayer, model.AudienceAdmin)
}

// ChallengeStateChanged announces open/closed/broken transitions.
func (s *BroadcastService) ChallengeStateChanged(ctx context.Context, name string, isOpen, isBroken bool) error {
	event := model.ChallengeStateChangedEvent{
		Kind:      model.EventChallengeStateChanged,
		Challenge: name,
		IsOpen:    isOpen,
		IsBroken:  isBroken,
	}
	return s.emit(ctx, event, model.AudienceGame, model.AudiencePlayer)
}
