package service

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"ctf_arena/internal/domain/repository"
	"errors"
	"fmt"
	"log"
	"time"
)

// SolveService is the state machine run for every submitted flag. The
// caller's identity decides the path once, at entry: administrators get
// a dry-run that only verifies and touches nothing, competitors go
// through the full record/lockout/verify/grant sequence.
type SolveService struct {
	challengeService *ChallengeService
	attemptRepo      repository.AttemptRepository
	achievementRepo  repository.AchievementRepository
	broadcast        *BroadcastService
	lockout          time.Duration
}

func NewSolveService(
	challengeService *ChallengeService,
	attemptRepo repository.AttemptRepository,
	achievementRepo repository.AchievementRepository,
	broadcast *BroadcastService,
	lockout time.Duration,
) *SolveService {
	return &SolveService{
		challengeService: challengeService,
		attemptRepo:      attemptRepo,
		achievementRepo:  achievementRepo,
		broadcast:        broadcast,
		lockout:          lockout,
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, common.ErrStorageUnavailable)
}

// outcomeFromVerifyErr maps verification failures to their submission
// outcomes. Each kind stays visible to the submitter; they are not
// collapsed into a generic rejection.
func outcomeFromVerifyErr(err error) (model.SolveOutcome, bool) {
	switch {
	case errors.Is(err, common.ErrChallengeNotFound):
		return model.OutcomeNotFound, true
	case errors.Is(err, common.ErrChallengeBroken):
		return model.OutcomeBroken, true
	case errors.Is(err, common.ErrChallengeClosed):
		return model.OutcomeClosed, true
	}
	return "", false
}

// Submit processes one flag submission.
func (s *SolveService) Submit(ctx context.Context, identity model.Identity, challengeName, proposal string) (*model.SolveResult, error) {
	// Input-shape validation happens before anything is recorded.
	if challengeName == "" || proposal == "" || identity.Username == "" {
		return nil, common.ErrBadRequest
	}

	if identity.IsAdmin {
		return s.dryRun(ctx, challengeName, proposal)
	}
	return s.competitorSubmit(ctx, identity, challengeName, proposal)
}

// dryRun verifies a flag without recording or broadcasting anything.
// Admins use it to test challenges; it must never affect competition
// state.
func (s *SolveService) dryRun(ctx context.Context, challengeName, proposal string) (*model.SolveResult, error) {
	valid, err := s.challengeService.Verify(ctx, challengeName, proposal)
	if err != nil {
		if outcome, ok := outcomeFromVerifyErr(err); ok {
			return &model.SolveResult{Outcome: outcome, DryRun: true}, nil
		}
		return nil, storageErr("dry-run verify", err)
	}
	outcome := model.OutcomeIncorrectFlag
	if valid {
		outcome = model.OutcomeAccepted
	}
	return &model.SolveResult{Outcome: outcome, DryRun: true}, nil
}

func (s *SolveService) competitorSubmit(ctx context.Context, identity model.Identity, challengeName, proposal string) (*model.SolveResult, error) {
	// The attempt is recorded before correctness is known so every
	// guess, right or wrong, is auditable.
	attempt, err := s.attemptRepo.Record(ctx, challengeName, identity.Username, identity.Teamname, proposal)
	if err != nil {
		return nil, storageErr("recording attempt", err)
	}
	if err := s.broadcast.SubmissionRecorded(ctx, attempt); err != nil {
		log.Printf("broadcast of attempt %s failed: %v", attempt.ID, err)
	}

	achievements, err := s.achievementRepo.ListByChallenge(ctx, challengeName)
	if err != nil {
		return nil, storageErr("listing achievements", err)
	}
	for _, a := range achievements {
		if a.Teamname == identity.Teamname {
			return &model.SolveResult{Outcome: model.OutcomeAlreadySolved}, nil
		}
	}

	// Global cooldown: once any team solves, the challenge is frozen
	// for everyone until the lockout window passes. This check is
	// best-effort; the grant below stays the uniqueness authority.
	lockoutStart := time.Now().Add(-s.lockout)
	for _, a := range achievements {
		if a.CreatedAt.After(lockoutStart) {
			return &model.SolveResult{Outcome: model.OutcomeTemporarilyLocked}, nil
		}
	}

	valid, err := s.challengeService.Verify(ctx, challengeName, proposal)
	if err != nil {
		if outcome, ok := outcomeFromVerifyErr(err); ok {
			return &model.SolveResult{Outcome: outcome}, nil
		}
		return nil, storageErr("verify", err)
	}
	if !valid {
		return &model.SolveResult{Outcome: model.OutcomeIncorrectFlag}, nil
	}

	achievement, err := s.achievementRepo.Grant(ctx, challengeName, identity.Teamname, identity.Username)
	if err != nil {
		return nil, storageErr("granting achievement", err)
	}
	if err := s.broadcast.AchievementRecorded(ctx, achievement); err != nil {
		log.Printf("broadcast of achievement %s failed: %v", achievement.ID, err)
	}

	return &model.SolveResult{Outcome: model.OutcomeAccepted, Achievement: achievement}, nil
}
