// api/authorizer/authorizer_test.go
package authorizer_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/gatekeeper/api/authorizer"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
	gk_mock "github.com/dev-mohitbeniwal/gatekeeper/api/test/mock"
)

const adminGroup = "gatekeeper-admin"

func newStubVerifier() *gk_mock.StubTokenVerifier {
	verifier := gk_mock.NewStubTokenVerifier()
	verifier.Principals["admin-token"] = &model.Principal{
		ID:       "u-admin",
		Username: "admin",
		Groups:   []string{adminGroup},
	}
	verifier.Principals["alice-token"] = &model.Principal{
		ID:       "u-alice",
		Username: "alice",
	}
	verifier.Err["expired-token"] = gk_errors.ErrTokenExpired
	verifier.Err["garbage"] = gk_errors.ErrTokenMalformed
	return verifier
}

func TestAuthorizer(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	ctx := context.Background()

	t.Run("NonAdmin_DeleteOtherRecord_Denied", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "alice-token", authorizer.Operation{
			Method: http.MethodDelete,
			UserID: "u-bob",
		})

		assert.False(t, decision.Allowed())
		assert.Equal(t, model.EffectDeny, decision.Effect)
		assert.NotNil(t, decision.Principal)
	})

	t.Run("Admin_DeleteOtherRecord_Allowed", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "admin-token", authorizer.Operation{
			Method: http.MethodDelete,
			UserID: "u-bob",
		})

		assert.True(t, decision.Allowed())
		assert.Equal(t, "u-admin", decision.Principal.ID)
	})

	t.Run("NonAdmin_DeleteOwnRecord_Allowed", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "alice-token", authorizer.Operation{
			Method: http.MethodDelete,
			UserID: "u-alice",
		})

		assert.True(t, decision.Allowed())
	})

	t.Run("NonAdmin_PutOtherRecord_Denied", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "alice-token", authorizer.Operation{
			Method: http.MethodPut,
			UserID: "u-bob",
		})

		assert.False(t, decision.Allowed())
	})

	t.Run("NonAdmin_GetOtherRecord_Allowed", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "alice-token", authorizer.Operation{
			Method: http.MethodGet,
			UserID: "u-bob",
		})

		assert.True(t, decision.Allowed())
	})

	t.Run("ExpiredCredential_Denied", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "expired-token", authorizer.Operation{
			Method: http.MethodGet,
			UserID: "u-alice",
		})

		assert.False(t, decision.Allowed())
		assert.Nil(t, decision.Principal)
		assert.Equal(t, "credential expired", decision.Reason)
	})

	t.Run("MalformedCredential_Denied", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "garbage", authorizer.Operation{
			Method: http.MethodPost,
		})

		assert.False(t, decision.Allowed())
		assert.Equal(t, "invalid credential", decision.Reason)
	})

	t.Run("UnknownCredential_Denied", func(t *testing.T) {
		authz := authorizer.New(newStubVerifier(), adminGroup, nil, 16, time.Minute)

		decision := authz.Authorize(ctx, "never-issued", authorizer.Operation{
			Method: http.MethodGet,
		})

		assert.False(t, decision.Allowed())
	})

	t.Run("RepeatedDecision_IsCached", func(t *testing.T) {
		verifier := newStubVerifier()
		authz := authorizer.New(verifier, adminGroup, nil, 16, time.Minute)
		op := authorizer.Operation{Method: http.MethodGet, UserID: "u-alice"}

		first := authz.Authorize(ctx, "alice-token", op)
		second := authz.Authorize(ctx, "alice-token", op)

		assert.Equal(t, first.Effect, second.Effect)
		assert.Equal(t, 1, verifier.VerifyCalls)
	})

	t.Run("Denial_IsAudited", func(t *testing.T) {
		recorder := &gk_mock.RecordingAuditService{}
		authz := authorizer.New(newStubVerifier(), adminGroup, recorder, 16, time.Minute)

		authz.Authorize(ctx, "alice-token", authorizer.Operation{
			Method: http.MethodDelete,
			UserID: "u-bob",
		})

		assert.Len(t, recorder.Entries, 1)
		assert.False(t, recorder.Entries[0].AccessGranted)
		assert.Equal(t, "AUTHORIZE_DELETE", recorder.Entries[0].Action)
		assert.Equal(t, "u-bob", recorder.Entries[0].ResourceID)
	})
}
