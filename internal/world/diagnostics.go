package world

import "github.com/vovakirdan/tilerules/internal/core"

// Value is a resolved rule value. Null marks an absent value, which
// stringifies to "null".
type Value struct {
	S    string
	Null bool
}

// Str wraps a present string value.
func Str(s string) Value { return Value{S: s} }

// NullValue is the absent value.
var NullValue = Value{Null: true}

// String returns the comparable string form of the value.
func (v Value) String() string {
	if v.Null {
		return "null"
	}
	return v.S
}

// FailureKind names the stage at which a rule match failed.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureOffscreen     FailureKind = "offscreen"
	FailureActorCount    FailureKind = "actor-count"
	FailureActorMismatch FailureKind = "actor-mismatch"
	FailureMissingActor  FailureKind = "missing-required-actor"
	FailureActionOffset  FailureKind = "action-offset-invalid"
	FailureCondition     FailureKind = "condition"
)

// CellResult is the matcher's verdict for one extent cell.
type CellResult struct {
	Local         core.Position // rule-local cell
	StagePosition core.Position // wrapped stage cell, zero when offscreen
	Offscreen     bool
	Ignored       bool
	StageActorIDs []string
	RuleActorIDs  []string
	Passed        bool
	Failure       FailureKind
}

// ConditionResult records one evaluated condition.
type ConditionResult struct {
	Key        string
	Comparator Comparator
	Left       Value
	Right      Value
	Passed     bool
}

// RuleEvaluation is the full matcher verdict for one actor and rule. It is
// produced on failure too so authoring tools can show why a rule did not
// fire.
type RuleEvaluation struct {
	RuleID          string
	ActorID         string
	Passed          bool
	Failure         FailureKind
	Message         string
	Cells           map[core.Position]CellResult
	Conditions      []ConditionResult
	StageActorForID map[string]string // rule actor id -> stage actor id
}

// NodeResult is the recorded outcome of a rule tree node for one actor.
type NodeResult struct {
	Passed     bool
	Evaluation *RuleEvaluation // set for leaf rules
}
