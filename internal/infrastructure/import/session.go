package orderimport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/orders"
)

// SessionState represents the state of an import session
type SessionState string

const (
	StateCreated   SessionState = "created"
	StateValidated SessionState = "validated"
	StateImporting SessionState = "importing"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
)

// ImportSession holds one validate-then-confirm import flow: the validation
// result is kept between the preview call and the operator's decision to
// either bulk-create the error-free rows or download the corrected file.
type ImportSession struct {
	ID          uuid.UUID                    `json:"id"`
	SellerID    uuid.UUID                    `json:"seller_id"`
	WarehouseID string                       `json:"warehouse_id"`
	HistoryID   uuid.UUID                    `json:"history_id"`
	FileName    string                       `json:"file_name"`
	FileSize    int64                        `json:"file_size"`
	State       SessionState                 `json:"state"`
	Result      *orders.FileProcessingResult `json:"result,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty"`
}

// NewImportSession creates a new import session
func NewImportSession(sellerID uuid.UUID, warehouseID, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:          uuid.New(),
		SellerID:    sellerID,
		WarehouseID: warehouseID,
		FileName:    fileName,
		FileSize:    fileSize,
		State:       StateCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateState updates the session state
func (s *ImportSession) UpdateState(state SessionState) {
	s.State = state
	s.UpdatedAt = time.Now()
	if state == StateCompleted || state == StateFailed {
		now := time.Now()
		s.CompletedAt = &now
	}
}

// SetResult attaches the validation result
func (s *ImportSession) SetResult(result *orders.FileProcessingResult) {
	s.Result = result
	s.UpdatedAt = time.Now()
	if result.Success {
		s.State = StateValidated
	} else {
		s.UpdateState(StateFailed)
	}
}

// CanConfirm returns true if the session is ready for bulk creation
func (s *ImportSession) CanConfirm() bool {
	return s.State == StateValidated && s.Result != nil && s.Result.ValidRows > 0
}

// SessionStore keeps import sessions between the validate and confirm calls.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *ImportSession) error
	Get(ctx context.Context, id uuid.UUID) (*ImportSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemorySessionStore is an in-memory implementation of SessionStore with a
// TTL. Suitable for single-instance deployments; distributed deployments use
// the Redis-backed store.
type InMemorySessionStore struct {
	sessions map[uuid.UUID]*ImportSession
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore creates a new in-memory session store
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go store.cleanupLoop()
	return store
}

// cleanupLoop periodically removes expired sessions
func (s *InMemorySessionStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup goroutine
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

// Save saves a session
func (s *InMemorySessionStore) Save(_ context.Context, session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get retrieves a session by ID. Expired or unknown sessions return nil.
func (s *InMemorySessionStore) Get(_ context.Context, id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, nil
	}
	return session, nil
}

// Delete deletes a session by ID
func (s *InMemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if time.Since(session.CreatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
