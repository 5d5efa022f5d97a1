// Package governance implements the tool admission control layer (§4.J):
// requested tool calls are scored for risk and weighed against the
// autonomy dial and rolling-window budgets before being approved, gated
// behind confirmation, or denied outright.
package governance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"theo/internal/budget"
)

// CostHint classifies a tool's resource cost.
type CostHint string

const (
	CostCheap     CostHint = "cheap"
	CostMedium    CostHint = "med"
	CostExpensive CostHint = "expensive"
)

// AutonomyLevel is the operator-configured dial governing how much the
// system may act without confirmation.
type AutonomyLevel string

const (
	AutonomyObserveOnly    AutonomyLevel = "observe-only"
	AutonomyAssist         AutonomyLevel = "assist"
	AutonomyActWithConfirm AutonomyLevel = "act-with-confirm"
	AutonomyActWithBounds  AutonomyLevel = "act-with-bounds"
)

func normalizeAutonomy(level string) AutonomyLevel {
	l := AutonomyLevel(strings.ToLower(strings.TrimSpace(level)))
	switch l {
	case AutonomyObserveOnly, "observe":
		return AutonomyObserveOnly
	case AutonomyAssist, AutonomyActWithConfirm, AutonomyActWithBounds:
		return l
	default:
		return AutonomyActWithBounds
	}
}

// ToolSpec describes a tool's static safety posture. Specs are loaded from
// configuration; any tool without an entry falls back to DefaultToolSpec.
type ToolSpec struct {
	Tier       int
	Reversible bool
	CostHint   CostHint
	SafetyTags []string
}

// DefaultToolSpec is used for any tool name with no configured spec.
func DefaultToolSpec() ToolSpec {
	return ToolSpec{Tier: 2, Reversible: false, CostHint: CostMedium, SafetyTags: []string{"unclassified"}}
}

// ActionPacket is a fully-scored, ready-to-review tool invocation.
type ActionPacket struct {
	Name          string
	CallID        string
	Args          map[string]any
	ToolSpec      ToolSpec
	EstimatedCost CostHint
	RiskScore     float64
	CreatedAt     time.Time
}

// Summary renders a one-line description of the action for logs.
func (a ActionPacket) Summary() string {
	return fmt.Sprintf("tool=%s tier=%d cost=%s risk=%.2f reversible=%t",
		a.Name, a.ToolSpec.Tier, a.EstimatedCost, a.RiskScore, a.ToolSpec.Reversible)
}

// DecisionStatus is the outcome of a governance review.
type DecisionStatus string

const (
	Approved          DecisionStatus = "approved"
	NeedsConfirmation DecisionStatus = "needs_confirmation"
	Denied            DecisionStatus = "denied"
)

// Decision is the governance layer's verdict on an ActionPacket.
type Decision struct {
	Status DecisionStatus
	Reason string
}

func (d Decision) Approved() bool          { return d.Status == Approved }
func (d Decision) NeedsConfirmation() bool { return d.Status == NeedsConfirmation }
func (d Decision) Denied() bool            { return d.Status == Denied }

// Config tunes the governance layer.
type Config struct {
	AutonomyLevel        string
	ToolCallsPerMinute   int
	ExpensiveCallsPerDay int
	RiskThreshold        float64
}

// Layer is the governance admission-control engine.
type Layer struct {
	toolSpecs       map[string]ToolSpec
	autonomyLevel   AutonomyLevel
	toolCallsBudget budget.Limiter
	expensiveBudget budget.Limiter
	riskThreshold   float64
}

// New constructs a Layer from a tool spec table and configuration, backed
// by in-process rolling-window budgets.
func New(toolSpecs map[string]ToolSpec, config Config) *Layer {
	return NewWithBudgets(toolSpecs, config,
		budget.New(config.ToolCallsPerMinute, time.Minute, "tool_calls_per_minute"),
		budget.New(config.ExpensiveCallsPerDay, 24*time.Hour, "expensive_calls_per_day"))
}

// NewWithBudgets constructs a Layer against caller-supplied budget.Limiter
// implementations, letting the composition root swap in a
// budget.DistributedWindow (Redis-backed) for either budget when the
// process is one of several cooperating robot processes sharing a budget,
// without this package needing to know which backing store is in play.
func NewWithBudgets(toolSpecs map[string]ToolSpec, config Config, toolCallsBudget, expensiveBudget budget.Limiter) *Layer {
	specs := make(map[string]ToolSpec, len(toolSpecs))
	for k, v := range toolSpecs {
		specs[k] = v
	}
	threshold := config.RiskThreshold
	if threshold == 0 {
		threshold = 0.6
	}
	return &Layer{
		toolSpecs:       specs,
		autonomyLevel:   normalizeAutonomy(config.AutonomyLevel),
		toolCallsBudget: toolCallsBudget,
		expensiveBudget: expensiveBudget,
		riskThreshold:   threshold,
	}
}

func (l *Layer) specFor(name string) ToolSpec {
	if spec, ok := l.toolSpecs[name]; ok {
		return spec
	}
	return DefaultToolSpec()
}

// BuildActionPacket scores a requested tool call.
func (l *Layer) BuildActionPacket(name, callID string, args map[string]any) ActionPacket {
	spec := l.specFor(name)
	return ActionPacket{
		Name:          name,
		CallID:        callID,
		Args:          args,
		ToolSpec:      spec,
		EstimatedCost: spec.CostHint,
		RiskScore:     estimateRisk(spec),
		CreatedAt:     time.Now(),
	}
}

// Review renders a governance decision for action.
func (l *Layer) Review(action ActionPacket) Decision {
	now := time.Now()

	if l.autonomyLevel == AutonomyObserveOnly {
		return Decision{Status: Denied, Reason: "autonomy dial set to observe-only"}
	}

	if !l.toolCallsBudget.Allow(now) {
		return Decision{Status: Denied, Reason: "tool-call budget exhausted"}
	}

	if action.EstimatedCost == CostExpensive && !l.expensiveBudget.Allow(now) {
		return Decision{Status: Denied, Reason: "expensive-call budget exhausted"}
	}

	if action.ToolSpec.Tier > 1 || action.RiskScore >= l.riskThreshold {
		return Decision{Status: NeedsConfirmation, Reason: "tool tier requires confirmation"}
	}

	if l.autonomyLevel == AutonomyAssist || l.autonomyLevel == AutonomyActWithConfirm {
		if action.ToolSpec.Tier > 0 {
			return Decision{Status: NeedsConfirmation, Reason: "autonomy level requires confirmation"}
		}
	}

	return Decision{Status: Approved, Reason: "within bounds"}
}

// RecordExecution records the call against both budgets, counting against
// the expensive budget only when the action's cost is expensive.
func (l *Layer) RecordExecution(action ActionPacket) {
	now := time.Now()
	l.toolCallsBudget.Record(now)
	if action.EstimatedCost == CostExpensive {
		l.expensiveBudget.Record(now)
	}
}

// DescribeTool reports the configured (or default) spec for name.
func (l *Layer) DescribeTool(name string) ToolSpec {
	return l.specFor(name)
}

func estimateRisk(spec ToolSpec) float64 {
	base := 0.2
	tierBump := 0.0
	if spec.Tier-1 > 0 {
		tierBump = 0.2 * float64(spec.Tier-1)
	}
	costBump := 0.0
	if spec.CostHint == CostExpensive {
		costBump = 0.2
	}
	reversibleBump := 0.1
	if spec.Reversible {
		reversibleBump = -0.1
	}
	risk := base + tierBump + costBump + reversibleBump
	if risk < 0 {
		risk = 0
	}
	if risk > 1 {
		risk = 1
	}
	return risk
}

// UniqueTags returns the union of safety tags across every configured tool.
func UniqueTags(toolSpecs map[string]ToolSpec) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, spec := range toolSpecs {
		for _, t := range spec.SafetyTags {
			tags[t] = struct{}{}
		}
	}
	return tags
}

// NormalizeSafetyTags trims, dedupes, and sorts a raw tag list.
func NormalizeSafetyTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		seen[trimmed] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
