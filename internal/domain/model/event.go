package model

// Broadcast audiences. Each maps to one outbound pubsub channel; the
// transport layer owns connection lifecycle and delivery.
type Audience string

const (
	AudienceAdmin  Audience = "admin"
	AudienceGame   Audience = "game"
	AudiencePlayer Audience = "player"
)

// Event kinds pushed to the audiences. Payloads embed public models
// only, so no secret material can appear in an outbound frame.
const (
	EventSubmissionRecorded    = "submission-recorded"
	EventAchievementRecorded   = "achievement-recorded"
	EventChallengeStateChanged = "challenge-state-changed"
)

type SubmissionRecordedEvent struct {
	Kind    string  `json:"kind"`
	Attempt Attempt `json:"attempt"`
}

type AchievementRecordedEvent struct {
	Kind        string      `json:"kind"`
	Achievement Achievement `json:"achievement"`
}

type ChallengeStateChangedEvent struct {
	Kind      string `json:"kind"`
	Challenge string `json:"challenge"`
	IsOpen    bool   `json:"is_open"`
	IsBroken  bool   `json:"is_broken"`
}
