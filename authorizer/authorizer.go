// api/authorizer/authorizer.go
package authorizer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/gatekeeper/api/audit"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	"github.com/dev-mohitbeniwal/gatekeeper/api/identity"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// Operation describes the request being gated: the HTTP-style method
// and the record key it targets, if any.
type Operation struct {
	Method string
	UserID string
}

// requiresElevated reports whether the operation needs the admin group
// marker: mutating a record keyed to another principal.
func (op Operation) requiresElevated(principal *model.Principal) bool {
	switch op.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return false
	}
	return op.UserID != "" && op.UserID != principal.ID
}

// Authorizer is the per-request decision function. It is stateless
// apart from a bounded decision cache; verdicts are deterministic for a
// given (credential, operation) pair within the credential's validity
// window.
type Authorizer struct {
	verifier   identity.TokenVerifier
	adminGroup string
	cache      *decisionCache
	cacheTTL   time.Duration
	auditSvc   audit.Service
}

func New(verifier identity.TokenVerifier, adminGroup string, auditSvc audit.Service, cacheSize int, cacheTTL time.Duration) *Authorizer {
	return &Authorizer{
		verifier:   verifier,
		adminGroup: adminGroup,
		cache:      newDecisionCache(cacheSize),
		cacheTTL:   cacheTTL,
		auditSvc:   auditSvc,
	}
}

// Authorize validates the credential and produces an allow/deny verdict
// for the operation. Any verification failure yields a deny with a
// generic reason; internal detail is logged, never returned.
func (a *Authorizer) Authorize(ctx context.Context, credential string, op Operation) model.Decision {
	key := cacheKey{Credential: credential, Method: op.Method, UserID: op.UserID}
	if cached := a.cache.Get(key); cached != nil {
		logger.Debug("Decision cache hit",
			zap.String("method", op.Method),
			zap.String("userID", op.UserID))
		return *cached
	}

	principal, err := a.verifier.Verify(ctx, credential)
	if err != nil {
		decision := model.Decision{Effect: model.EffectDeny, Reason: denyReason(err)}
		logger.Warn("Credential verification failed",
			zap.Error(err),
			zap.String("method", op.Method),
			zap.String("userID", op.UserID))
		a.recordDecision(ctx, "", op, decision)
		return decision
	}

	decision := model.Decision{Effect: model.EffectAllow, Principal: principal}
	if op.requiresElevated(principal) && !principal.IsInGroup(a.adminGroup) {
		decision = model.Decision{
			Effect:    model.EffectDeny,
			Principal: principal,
			Reason:    "operation requires elevated privilege",
		}
	}

	a.cache.Set(key, decision, a.cacheExpiry(principal))
	a.recordDecision(ctx, principal.ID, op, decision)
	return decision
}

// cacheExpiry clamps the cache TTL to the credential's own expiry so a
// cached allow never outlives the token.
func (a *Authorizer) cacheExpiry(principal *model.Principal) time.Time {
	expiry := time.Now().Add(a.cacheTTL)
	if !principal.ExpiresAt.IsZero() && principal.ExpiresAt.Before(expiry) {
		expiry = principal.ExpiresAt
	}
	return expiry
}

// recordDecision writes denials and elevated grants to the audit trail.
// Audit failures are non-fatal to the request.
func (a *Authorizer) recordDecision(ctx context.Context, principalID string, op Operation, decision model.Decision) {
	if a.auditSvc == nil {
		return
	}
	if decision.Allowed() && decision.Principal != nil && !op.requiresElevated(decision.Principal) {
		return
	}

	entry := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        principalID,
		Action:        "AUTHORIZE_" + op.Method,
		ResourceID:    op.UserID,
		AccessGranted: decision.Allowed(),
	}
	if err := a.auditSvc.LogAccess(ctx, entry); err != nil {
		logger.Warn("Failed to record authorization decision", zap.Error(err))
	}
}

// denyReason maps a verification error to the coarse reason surfaced to
// the rejected caller.
func denyReason(err error) string {
	switch {
	case errors.Is(err, gk_errors.ErrTokenExpired):
		return "credential expired"
	default:
		return "invalid credential"
	}
}
