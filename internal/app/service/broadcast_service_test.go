package service

import (
	"context"
	"ctf_arena/internal/domain/model"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastService_AudienceRouting(t *testing.T) {
	publisher := &capturePublisher{}
	broadcast := NewBroadcastService(publisher)
	ctx := context.Background()

	attempt := &model.Attempt{ID: "att-1", Challenge: "crypto-101", Username: "alice", Teamname: "team-a", Proposal: "FLAG{guess}"}
	require.NoError(t, broadcast.SubmissionRecorded(ctx, attempt))

	// Raw attempts reach administrators only.
	assert.Equal(t, []string{"audience:admin"}, publisher.channels())

	publisher.events = nil
	achievement := &model.Achievement{ID: "ach-1", Challenge: "crypto-101", Teamname: "team-a", Username: "alice", CreatedAt: time.Now()}
	require.NoError(t, broadcast.AchievementRecorded(ctx, achievement))
	assert.Equal(t, []string{"audience:game", "audience:player", "audience:admin"}, publisher.channels())

	publisher.events = nil
	require.NoError(t, broadcast.ChallengeStateChanged(ctx, "crypto-101", false, true))
	assert.Equal(t, []string{"audience:game", "audience:player"}, publisher.channels())
}

func TestBroadcastService_EventPayloads(t *testing.T) {
	publisher := &capturePublisher{}
	broadcast := NewBroadcastService(publisher)
	ctx := context.Background()

	achievement := &model.Achievement{ID: "ach-1", Challenge: "crypto-101", Teamname: "team-a", Username: "alice"}
	require.NoError(t, broadcast.AchievementRecorded(ctx, achievement))

	var event model.AchievementRecordedEvent
	require.NoError(t, json.Unmarshal(publisher.events[0].Payload, &event))
	assert.Equal(t, model.EventAchievementRecorded, event.Kind)
	assert.Equal(t, "crypto-101", event.Achievement.Challenge)

	publisher.events = nil
	require.NoError(t, broadcast.ChallengeStateChanged(ctx, "crypto-101", true, false))

	var stateEvent model.ChallengeStateChangedEvent
	require.NoError(t, json.Unmarshal(publisher.events[0].Payload, &stateEvent))
	assert.Equal(t, model.EventChallengeStateChanged, stateEvent.Kind)
	assert.True(t, stateEvent.IsOpen)
	assert.False(t, stateEvent.IsBroken)
}
