package model

import "time"

// Effect is the outcome of an authorization decision.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Principal is the authenticated identity extracted from a verified
// bearer token.
type Principal struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Groups    []string  `json:"groups"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsInGroup reports whether the principal carries the given group marker.
func (p *Principal) IsInGroup(group string) bool {
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Decision is the per-request authorization verdict. It lives only for
// the duration of one request and is never persisted.
type Decision struct {
	Effect    Effect     `json:"effect"`
	Principal *Principal `json:"principal,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Effect == EffectAllow
}
