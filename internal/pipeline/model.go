package pipeline

import (
	"fmt"
	"time"

	"github.com/ppiankov/benchforge/internal/leaderboard"
	"github.com/ppiankov/benchforge/internal/repo"
)

// State is the position of a repository in its evaluation pipeline.
type State int

const (
	StatePending State = iota
	StateAcquired
	StateProvisioned
	StateInstalled
	StateInstallSkipped
	StateLocated
	StateExecuted
	StateScored
	StateUnscored // ran, but the output carried no marker
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateAcquired:
		return "ACQUIRED"
	case StateProvisioned:
		return "PROVISIONED"
	case StateInstalled:
		return "INSTALLED"
	case StateInstallSkipped:
		return "INSTALL_SKIPPED"
	case StateLocated:
		return "LOCATED"
	case StateExecuted:
		return "EXECUTED"
	case StateScored:
		return "SCORED"
	case StateUnscored:
		return "UNSCORED"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateScored || s == StateUnscored || s == StateFailed || s == StateCancelled
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Stage names a pipeline step.
type Stage string

const (
	StageAcquire   Stage = "acquire"
	StageReconcile Stage = "reconcile"
	StageProvision Stage = "provision"
	StageInstall   Stage = "install"
	StageLocate    Stage = "locate"
	StageExecute   Stage = "execute"
	StageExtract   Stage = "extract"
)

// Kind classifies a stage failure.
type Kind int

const (
	KindAcquisition Kind = iota + 1
	KindProvisioning
	KindInstallation
	KindMissingEntryPoint
	KindExecution
	KindExecutionTimeout
	KindRuntimeDiagnostic
	KindScoreMissing
	KindScoreMalformed
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindAcquisition:
		return "AcquisitionError"
	case KindProvisioning:
		return "ProvisioningError"
	case KindInstallation:
		return "InstallationWarning"
	case KindMissingEntryPoint:
		return "MissingEntryPoint"
	case KindExecution:
		return "ExecutionError"
	case KindExecutionTimeout:
		return "ExecutionTimeout"
	case KindRuntimeDiagnostic:
		return "RuntimeDiagnostic"
	case KindScoreMissing:
		return "ScoreMissing"
	case KindScoreMalformed:
		return "ScoreMalformed"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fatal reports whether the condition ends the repository's pipeline.
// Installation warnings are advisory; a missing score only excludes the
// repository from the leaderboard.
func (k Kind) Fatal() bool {
	return k != KindInstallation && k != KindScoreMissing
}

// StageError is a failure of one stage for one repository.
type StageError struct {
	RepoID string
	Stage  Stage
	Kind   Kind
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.RepoID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Issue is the serialized form of a StageError.
type Issue struct {
	Stage   Stage  `json:"stage"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func issueOf(e *StageError) *Issue {
	if e == nil {
		return nil
	}
	return &Issue{Stage: e.Stage, Kind: e.Kind, Message: e.Err.Error()}
}

// Outcome is the result of evaluating one repository.
type Outcome struct {
	Repo       repo.Descriptor    `json:"repo"`
	State      State              `json:"state"`
	Stage      Stage              `json:"stage,omitempty"` // stage running or last attempted
	Err        *StageError        `json:"-"`
	Warnings   []*StageError      `json:"-"`
	Notes      []string           `json:"notes,omitempty"`
	Cloned     bool               `json:"cloned"`
	EntryPoint string             `json:"entry_point,omitempty"`
	ExitCode   int                `json:"exit_code,omitempty"`
	Entry      *leaderboard.Entry `json:"-"`
	Stdout     string             `json:"-"`
	Stderr     string             `json:"-"`
	Logs       []string           `json:"logs,omitempty"`
	StartedAt  time.Time          `json:"started_at,omitempty"`
	EndedAt    time.Time          `json:"ended_at,omitempty"`
	Duration   time.Duration      `json:"duration,omitempty"`
}

// Report is the JSON run report. It is an output artifact; no command
// reads it back.
type Report struct {
	RunID         string               `json:"run_id"`
	Timestamp     time.Time            `json:"timestamp"`
	WorkDir       string               `json:"work_dir"`
	Workers       int                  `json:"workers"`
	Marker        string               `json:"marker"`
	Total         int                  `json:"total"`
	Scored        int                  `json:"scored"`
	Unscored      int                  `json:"unscored"`
	Failed        int                  `json:"failed"`
	Cancelled     int                  `json:"cancelled"`
	Leaderboard   []leaderboard.Ranked `json:"leaderboard"`
	Repos         []RepoReport         `json:"repos"`
	TotalDuration time.Duration        `json:"total_duration"`
}

// RepoReport is one repository's line in the run report.
type RepoReport struct {
	Outcome
	Score    *float64 `json:"score,omitempty"`
	Error    *Issue   `json:"error,omitempty"`
	Warnings []Issue  `json:"warnings,omitempty"`
}
