// Package models holds the value types shared across the guard's
// components: classifier verdicts, path verdicts, and the approval
// record shape exchanged between the core and its front-end.
package models

// VerdictKind tags a Decision as allowed, dangerous, or forbidden.
type VerdictKind string

const (
	Allow      VerdictKind = "allow"
	Dangerous  VerdictKind = "dangerous"
	Forbidden  VerdictKind = "forbidden"
)

// Decision is the result of classifying a shell command. Reason is
// empty when Kind is Allow.
type Decision struct {
	Kind   VerdictKind
	Reason string
}

func AllowDecision() Decision                { return Decision{Kind: Allow} }
func DangerousDecision(reason string) Decision { return Decision{Kind: Dangerous, Reason: reason} }
func ForbiddenDecision(reason string) Decision { return Decision{Kind: Forbidden, Reason: reason} }

func (d Decision) IsAllow() bool     { return d.Kind == Allow }
func (d Decision) IsDangerous() bool { return d.Kind == Dangerous }
func (d Decision) IsForbidden() bool { return d.Kind == Forbidden }

// PathVerdictKind tags a PathDecision as allowed or blocked.
type PathVerdictKind string

const (
	PathAllow   PathVerdictKind = "allow"
	PathBlocked PathVerdictKind = "blocked"
)

// PathDecision is the result of classifying a filesystem access.
type PathDecision struct {
	Kind   PathVerdictKind
	Reason string
}

func PathAllowDecision() PathDecision              { return PathDecision{Kind: PathAllow} }
func PathBlockedDecision(reason string) PathDecision { return PathDecision{Kind: PathBlocked, Reason: reason} }

func (d PathDecision) IsAllow() bool   { return d.Kind == PathAllow }
func (d PathDecision) IsBlocked() bool { return d.Kind == PathBlocked }

// ChatScope distinguishes a private chat from a group chat for
// C1's group-scoped strictness rule. The zero value (ScopeUnspecified)
// behaves exactly like the single-argument classifier from spec.md.
type ChatScope string

const (
	ScopeUnspecified ChatScope = ""
	ScopePrivate     ChatScope = "private"
	ScopeGroup       ChatScope = "group"
)
