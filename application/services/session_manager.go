package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/aggregates"
)

// SessionManager hands out one EditorSession per open document. Sessions
// are created lazily on first access and hold the document, selection,
// clipboard and history for as long as the document stays open.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*EditorSession
	repo     ports.DocumentRepository
	logger   *zap.Logger
}

// NewSessionManager creates a session manager backed by the repository
func NewSessionManager(repo ports.DocumentRepository, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*EditorSession),
		repo:     repo,
		logger:   logger,
	}
}

// Acquire returns the session for the given document, loading the
// document from the repository when it is opened for the first time.
func (m *SessionManager) Acquire(ctx context.Context, ownerID string, id aggregates.DocumentID) (*EditorSession, error) {
	key := sessionKey(ownerID, id)

	m.mu.Lock()
	if session, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	// Load outside the lock; concurrent first opens race harmlessly and
	// the second loser's document is discarded below.
	doc, err := m.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[key]; ok {
		return session, nil
	}

	session := NewEditorSession(doc)
	m.sessions[key] = session
	m.logger.Debug("editor session opened",
		zap.String("document_id", id.String()),
		zap.String("owner_id", ownerID),
	)
	return session, nil
}

// Adopt installs a session for a document that already exists in memory,
// typically one just created. Replaces any prior session.
func (m *SessionManager) Adopt(ownerID string, doc *aggregates.Document) *EditorSession {
	session := NewEditorSession(doc)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey(ownerID, doc.ID())] = session
	return session
}

// Close discards the session for a document. Selection, clipboard and
// history do not survive; the document itself stays persisted.
func (m *SessionManager) Close(ownerID string, id aggregates.DocumentID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionKey(ownerID, id)]; ok {
		delete(m.sessions, sessionKey(ownerID, id))
		m.logger.Debug("editor session closed",
			zap.String("document_id", id.String()),
			zap.String("owner_id", ownerID),
		)
	}
}

// OpenCount returns the number of live sessions
func (m *SessionManager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func sessionKey(ownerID string, id aggregates.DocumentID) string {
	return ownerID + "/" + id.String()
}
