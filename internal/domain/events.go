package domain

import "context"

// PostIssued signals that a user published a post and must be charged.
type PostIssued struct {
	PosterID string `json:"poster_id"`
}

// Validate rejects malformed events before any store access.
func (e PostIssued) Validate() error {
	if e.PosterID == "" {
		return ErrMissingPosterID
	}
	return nil
}

// VoteEvent is delivered when a vote is issued or retracted. NewCount is the
// tally after the vote, as observed by the voting subsystem.
type VoteEvent struct {
	VoterID  string `json:"user_id"`
	PosterID string `json:"poster_id"`
	TargetID string `json:"target_id"`
	NewCount int64  `json:"new_count"`
	SelfVote bool   `json:"self_vote"`
	VoteType string `json:"vote_type"`
}

// Validate rejects malformed events before any store access.
func (e VoteEvent) Validate() error {
	if e.VoterID == "" {
		return ErrMissingUserID
	}
	if e.PosterID == "" {
		return ErrMissingPosterID
	}
	if e.TargetID == "" {
		return ErrMissingTargetID
	}
	return nil
}

// EffectiveCount is the vote count with a flagged self vote subtracted.
// Threshold arithmetic only ever sees effective counts.
func (e VoteEvent) EffectiveCount() int64 {
	if e.SelfVote {
		return e.NewCount - 1
	}
	return e.NewCount
}

// Limiter is the full set of operations the facade dispatches to.
type Limiter interface {
	MayPost(ctx context.Context, userID string) (bool, error)
	MayVote(ctx context.Context, userID, targetID string) (bool, error)
	GetQuota(ctx context.Context, userID string) (Quota, error)
	IssueTokens(ctx context.Context, userID string, amount int64) (int64, error)
	HandlePost(ctx context.Context, ev PostIssued) error
	HandleVote(ctx context.Context, ev VoteEvent) error
	HandleVoteRetracted(ctx context.Context, ev VoteEvent) error
}
