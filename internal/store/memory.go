package store

import (
	"sync"

	"bilal-chat-backend/internal/dialogue"
	"bilal-chat-backend/internal/intent"
)

type Message struct {
	Role    string
	Content string
}

// MemoryStore keeps per-session transient state: the message log, the
// dialogue context, and the admin-unlocked flag. Map access is guarded by the
// mutex; the dialogue context itself is mutated one turn at a time per
// session, so it carries no lock.
type MemoryStore struct {
	mu            sync.RWMutex
	sessions      map[string][]Message
	dialogues     map[string]*dialogue.Session
	adminUnlocked map[string]bool
	turnLocks     map[string]*sync.Mutex
	maxMessages   int
	historyWindow int

	// chat analytics
	turnsByIntent map[intent.Kind]int
	totalTurns    int
}

func NewMemoryStore(maxMessages, historyWindow int) *MemoryStore {
	return &MemoryStore{
		sessions:      make(map[string][]Message),
		dialogues:     make(map[string]*dialogue.Session),
		adminUnlocked: make(map[string]bool),
		turnLocks:     make(map[string]*sync.Mutex),
		maxMessages:   maxMessages,
		historyWindow: historyWindow,
		turnsByIntent: make(map[intent.Kind]int),
	}
}

// LockSession serializes turns for one session, so concurrent requests with
// the same session ID cannot race on the dialogue context. Sessions stay
// independent: each has its own lock. The returned func releases it.
func (m *MemoryStore) LockSession(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.turnLocks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.turnLocks[sessionID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *MemoryStore) Append(sessionID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
	m.trimLocked(sessionID)
}

func (m *MemoryStore) Get(sessionID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[sessionID]
	copyMsgs := make([]Message, len(msgs))
	copy(copyMsgs, msgs)
	return copyMsgs
}

func (m *MemoryStore) trimLocked(sessionID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.sessions[sessionID]
	if len(msgs) > m.maxMessages {
		m.sessions[sessionID] = msgs[len(msgs)-m.maxMessages:]
	}
}

// Dialogue returns the session's dialogue context, creating it on first use.
func (m *MemoryStore) Dialogue(sessionID string) *dialogue.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.dialogues[sessionID]
	if !ok {
		sess = dialogue.NewSession(m.historyWindow)
		m.dialogues[sessionID] = sess
	}
	return sess
}

// Admin unlock persists for the remainder of the session.

func (m *MemoryStore) UnlockAdmin(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminUnlocked[sessionID] = true
}

func (m *MemoryStore) IsAdmin(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adminUnlocked[sessionID]
}

// Analytics counters

func (m *MemoryStore) RecordTurn(kind intent.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalTurns++
	if kind != "" {
		m.turnsByIntent[kind]++
	}
}

type Stats struct {
	Sessions      int                 `json:"sessions"`
	TotalTurns    int                 `json:"total_turns"`
	TurnsByIntent map[intent.Kind]int `json:"turns_by_intent"`
}

func (m *MemoryStore) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byIntent := make(map[intent.Kind]int, len(m.turnsByIntent))
	for k, v := range m.turnsByIntent {
		byIntent[k] = v
	}
	return Stats{
		Sessions:      len(m.sessions),
		TotalTurns:    m.totalTurns,
		TurnsByIntent: byIntent,
	}
}
