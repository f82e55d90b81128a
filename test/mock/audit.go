// test/mock/audit.go
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/gatekeeper/api/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogAccess(ctx context.Context, log audit.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.AuditLog, error) {
	args := m.Called(ctx, from, to, userID, resourceID)
	return args.Get(0).([]audit.AuditLog), args.Error(1)
}

// RecordingAuditService collects entries in memory for assertions.
type RecordingAuditService struct {
	mu      sync.Mutex
	Entries []audit.AuditLog
}

func (r *RecordingAuditService) LogAccess(ctx context.Context, log audit.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, log)
	return nil
}

func (r *RecordingAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := make([]audit.AuditLog, len(r.Entries))
	copy(logs, r.Entries)
	return logs, nil
}
