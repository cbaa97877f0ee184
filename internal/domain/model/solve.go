package model

// SolveOutcome is the terminal result of one submission.
type SolveOutcome string

const (
	OutcomeAccepted          SolveOutcome = "Accepted"
	OutcomeAlreadySolved     SolveOutcome = "AlreadySolved"
	OutcomeTemporarilyLocked SolveOutcome = "TemporarilyLocked"
	OutcomeIncorrectFlag     SolveOutcome = "IncorrectFlag"
	OutcomeNotFound          SolveOutcome = "NotFound"
	OutcomeBroken            SolveOutcome = "Broken"
	OutcomeClosed            SolveOutcome = "Closed"
)

// SolveResult is returned to the submitter. Achievement is set only on
// an accepted competitor submission; DryRun marks the admin test path,
// which never touches competition state.
type SolveResult struct {
	Outcome     SolveOutcome `json:"outcome"`
	DryRun      bool         `json:"dry_run,omitempty"`
	Achievement *Achievement `json:"achievement,omitempty"`
}

func (r SolveResult) Accepted() bool {
	return r.Outcome == OutcomeAccepted
}
