package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"ctf_arena/internal/domain/repository"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ChallengeService owns challenge definitions and secret verification.
// The plaintext flag is hashed with a per-challenge salt at creation and
// is never persisted or serialized anywhere.
type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
}

func NewChallengeService(challengeRepo repository.ChallengeRepository) *ChallengeService {
	return &ChallengeService{challengeRepo: challengeRepo}
}

// hashFlag derives the stored secret from the plaintext and salt.
func hashFlag(plaintext, salt string) string {
	sum := sha256.Sum256([]byte(plaintext + salt))
	return hex.EncodeToString(sum[:])
}

type CreateChallengeRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Img         string                    `json:"img"`
	Author      string                    `json:"author"`
	Category    string                    `json:"category"`
	Difficulty  model.ChallengeDifficulty `json:"difficulty"`
	Flag        string                    `json:"flag"`
}

func (s *ChallengeService) Create(ctx context.Context, req CreateChallengeRequest) (*model.Challenge, error) {
	if req.Name == "" || req.Description == "" || req.Author == "" || req.Category == "" || req.Flag == "" {
		return nil, common.ErrBadRequest
	}
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrBadRequest)
	}

	// The salt is generated once and fixed for the challenge's lifetime;
	// later flag rotations re-hash with this same salt.
	salt := uuid.NewString()
	challenge := &model.Challenge{
		Name:        slug.Make(req.Name),
		Description: req.Description,
		Img:         req.Img,
		Author:      req.Author,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		FlagHash:    hashFlag(req.Flag, salt),
		Salt:        salt,
		IsOpen:      true,
		IsBroken:    false,
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeService) List(ctx context.Context) ([]model.Challenge, error) {
	challenges, err := s.challengeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

func (s *ChallengeService) Get(ctx context.Context, name string) (*model.Challenge, error) {
	return s.challengeRepo.FindByName(ctx, name)
}

// Verify checks a candidate plaintext flag against the stored hash.
// Missing, broken and closed challenges fail with their own errors so a
// submitter can tell them apart from a wrong flag. The hash comparison
// is constant-time.
func (s *ChallengeService) Verify(ctx context.Context, name, candidate string) (bool, error) {
	challenge, err := s.challengeRepo.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	if challenge.IsBroken {
		return false, common.ErrChallengeBroken
	}
	if !challenge.IsOpen {
		return false, common.ErrChallengeClosed
	}

	candidateHash := hashFlag(candidate, challenge.Salt)
	return subtle.ConstantTimeCompare([]byte(candidateHash), []byte(challenge.FlagHash)) == 1, nil
}

type UpdateChallengeRequest struct {
	Description *string                    `json:"description,omitempty"`
	Img         *string                    `json:"img,omitempty"`
	Author      *string                    `json:"author,omitempty"`
	Category    *string                    `json:"category,omitempty"`
	Difficulty  *model.ChallengeDifficulty `json:"difficulty,omitempty"`
	Flag        *string                    `json:"flag,omitempty"`
}

// Update overwrites the supplied fields. A new flag is re-hashed with
// the challenge's existing salt; the salt itself is never rotated.
func (s *ChallengeService) Update(ctx context.Context, name string, req UpdateChallengeRequest) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Img != nil {
		challenge.Img = *req.Img
	}
	if req.Author != nil {
		challenge.Author = *req.Author
	}
	if req.Category != nil {
		challenge.Category = *req.Category
	}
	if req.Difficulty != nil {
		if !req.Difficulty.Valid() {
			return nil, fmt.Errorf("unknown difficulty %q: %w", *req.Difficulty, common.ErrBadRequest)
		}
		challenge.Difficulty = *req.Difficulty
	}
	if req.Flag != nil && *req.Flag != "" {
		challenge.FlagHash = hashFlag(*req.Flag, challenge.Salt)
	}

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeService) SetOpen(ctx context.Context, name string, open bool) error {
	return s.challengeRepo.SetOpen(ctx, name, open)
}

func (s *ChallengeService) OpenAll(ctx context.Context) error {
	return s.challengeRepo.SetAllOpen(ctx, true)
}

func (s *ChallengeService) CloseAll(ctx context.Context) error {
	return s.challengeRepo.SetAllOpen(ctx, false)
}

func (s *ChallengeService) SetBroken(ctx context.Context, name string, broken bool) error {
	return s.challengeRepo.SetBroken(ctx, name, broken)
}

func (s *ChallengeService) Remove(ctx context.Context, name string) error {
	return s.challengeRepo.Delete(ctx, name)
}
