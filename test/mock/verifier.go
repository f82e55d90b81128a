// test/mock/verifier.go
package mock

import (
	"context"

	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// StubTokenVerifier maps raw credentials to canned principals so tests
// never touch a live identity issuer.
type StubTokenVerifier struct {
	Principals map[string]*model.Principal
	Err        map[string]error

	// VerifyCalls counts invocations, letting tests observe decision
	// cache hits
	VerifyCalls int
}

func NewStubTokenVerifier() *StubTokenVerifier {
	return &StubTokenVerifier{
		Principals: make(map[string]*model.Principal),
		Err:        make(map[string]error),
	}
}

func (s *StubTokenVerifier) Verify(ctx context.Context, credential string) (*model.Principal, error) {
	s.VerifyCalls++
	if err, ok := s.Err[credential]; ok {
		return nil, err
	}
	if principal, ok := s.Principals[credential]; ok {
		return principal, nil
	}
	return nil, gk_errors.ErrTokenInvalid
}
