package wizard

import (
	"sync"

	"github.com/teamhackers/boardbooster/catalog"
)

// Step is the wizard's position in the ingestion flow.
type Step int

const (
	StepNone        Step = iota
	StepChapterName      // typing a new chapter name
	StepType             // picking a content type
	StepLectureNo        // typing a lecture number
	StepFile             // sending the file
)

// Draft is one admin's in-progress upload. The zero value means no wizard
// is active.
type Draft struct {
	Step      Step
	Subject   catalog.Subject
	Chapter   string
	Type      catalog.ContentType
	LectureNo string
}

// Sessions stores drafts per user. Implementations must be safe for
// concurrent use.
type Sessions interface {
	Get(userID int64) (Draft, bool)
	Put(userID int64, d Draft)
	Clear(userID int64)
}

type memorySessions struct {
	mu     sync.RWMutex
	drafts map[int64]Draft
}

// NewMemorySessions returns an in-process session store.
func NewMemorySessions() Sessions {
	return &memorySessions{drafts: make(map[int64]Draft)}
}

func (m *memorySessions) Get(userID int64) (Draft, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[userID]
	return d, ok
}

func (m *memorySessions) Put(userID int64, d Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[userID] = d
}

func (m *memorySessions) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, userID)
}
