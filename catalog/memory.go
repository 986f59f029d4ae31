package catalog

import (
	"context"
	"sync"
)

type memChapter struct {
	name     string
	lectures map[string]FileRef
	notes    FileRef
	dpp      FileRef
}

type memoryStore struct {
	mu       sync.RWMutex
	subjects map[Subject]bool
	chapters map[Subject][]*memChapter // creation order
}

// NewMemoryStore constructs an in-memory Store for tests and development.
// subjects fixes the allowed subject set.
func NewMemoryStore(subjects []Subject) Store {
	allowed := make(map[Subject]bool, len(subjects))
	for _, s := range subjects {
		allowed[s] = true
	}
	return &memoryStore{
		subjects: allowed,
		chapters: make(map[Subject][]*memChapter),
	}
}

func (m *memoryStore) ListChapters(_ context.Context, subject Subject) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.chapters[subject]
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.name)
	}
	return names, nil
}

func (m *memoryStore) ResolveChapter(_ context.Context, subject Subject, token string) (Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r := m.resolveLocked(subject, token); r != nil {
		return Chapter{Subject: subject, Name: r.name}, nil
	}
	return Chapter{}, ErrChapterNotFound
}

// resolveLocked walks the fallback ladder: exact stored name, reversible
// decode, slug match, normalized match.
func (m *memoryStore) resolveLocked(subject Subject, token string) *memChapter {
	recs := m.chapters[subject]
	for _, r := range recs {
		if r.name == token {
			return r
		}
	}
	if decoded, exact := DecodeChapterToken(token); exact {
		for _, r := range recs {
			if r.name == decoded {
				return r
			}
		}
	}
	for _, r := range recs {
		if Slug(r.name) == token {
			return r
		}
	}
	norm := normalizeName(token)
	for _, r := range recs {
		if normalizeName(r.name) == norm {
			return r
		}
	}
	return nil
}

func (m *memoryStore) CreateChapter(_ context.Context, subject Subject, name string) error {
	if !m.subjects[subject] {
		return ErrUnknownSubject
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collidesLocked(subject, name) {
		return ErrChapterExists
	}
	m.chapters[subject] = append(m.chapters[subject], newMemChapter(name))
	return nil
}

func (m *memoryStore) collidesLocked(subject Subject, name string) bool {
	slug, norm := Slug(name), normalizeName(name)
	for _, r := range m.chapters[subject] {
		if r.name == name || Slug(r.name) == slug || normalizeName(r.name) == norm {
			return true
		}
	}
	return false
}

func newMemChapter(name string) *memChapter {
	return &memChapter{name: name, lectures: make(map[string]FileRef)}
}

func (m *memoryStore) GetContent(_ context.Context, subject Subject, chapter string, t ContentType, lectureNo string) (FileRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		return FileRef{}, ErrChapterNotFound
	}
	var ref FileRef
	switch t {
	case TypeLecture:
		ref = r.lectures[lectureNo]
	case TypeNotes:
		ref = r.notes
	case TypeDPP:
		ref = r.dpp
	}
	if ref.Zero() {
		return FileRef{}, ErrContentAbsent
	}
	return ref, nil
}

func (m *memoryStore) PutContent(_ context.Context, subject Subject, chapter string, t ContentType, lectureNo string, ref FileRef) error {
	if !m.subjects[subject] {
		return ErrUnknownSubject
	}
	if t == TypeLecture && !ValidLectureNo(lectureNo) {
		return ErrBadLectureNo
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		r = newMemChapter(chapter)
		m.chapters[subject] = append(m.chapters[subject], r)
	}
	switch t {
	case TypeLecture:
		r.lectures[lectureNo] = ref
	case TypeNotes:
		r.notes = ref
	case TypeDPP:
		r.dpp = ref
	}
	return nil
}

func (m *memoryStore) UpdateFileID(_ context.Context, subject Subject, chapter string, t ContentType, lectureNo, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		return ErrChapterNotFound
	}
	switch t {
	case TypeLecture:
		ref, ok := r.lectures[lectureNo]
		if !ok {
			return ErrContentAbsent
		}
		ref.FileID = fileID
		r.lectures[lectureNo] = ref
	case TypeNotes:
		if r.notes.Zero() {
			return ErrContentAbsent
		}
		r.notes.FileID = fileID
	case TypeDPP:
		if r.dpp.Zero() {
			return ErrContentAbsent
		}
		r.dpp.FileID = fileID
	}
	return nil
}

func (m *memoryStore) DeleteChapter(_ context.Context, subject Subject, chapter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.chapters[subject]
	for i, r := range recs {
		if r.name == chapter {
			m.chapters[subject] = append(recs[:i], recs[i+1:]...)
			m.pruneLocked(subject)
			return nil
		}
	}
	return ErrChapterNotFound
}

func (m *memoryStore) DeleteContent(_ context.Context, subject Subject, chapter string, t ContentType, lectureNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		return ErrChapterNotFound
	}
	switch t {
	case TypeLecture:
		if lectureNo == "" {
			if len(r.lectures) == 0 {
				return ErrContentAbsent
			}
			r.lectures = make(map[string]FileRef)
		} else {
			if _, ok := r.lectures[lectureNo]; !ok {
				return ErrContentAbsent
			}
			delete(r.lectures, lectureNo)
		}
	case TypeNotes:
		if r.notes.Zero() {
			return ErrContentAbsent
		}
		r.notes = FileRef{}
	case TypeDPP:
		if r.dpp.Zero() {
			return ErrContentAbsent
		}
		r.dpp = FileRef{}
	}
	if r.empty() {
		m.removeLocked(subject, r.name)
	}
	m.pruneLocked(subject)
	return nil
}

func (m *memoryStore) ListLectureNumbers(_ context.Context, subject Subject, chapter string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		return nil, ErrChapterNotFound
	}
	nos := make([]string, 0, len(r.lectures))
	for no := range r.lectures {
		nos = append(nos, no)
	}
	SortLectureNos(nos)
	return nos, nil
}

func (m *memoryStore) Summary(_ context.Context, subject Subject, chapter string) (TypeCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.findLocked(subject, chapter)
	if r == nil {
		return TypeCounts{}, ErrChapterNotFound
	}
	nos := make([]string, 0, len(r.lectures))
	for no := range r.lectures {
		nos = append(nos, no)
	}
	SortLectureNos(nos)
	return TypeCounts{
		Lectures: nos,
		HasNotes: !r.notes.Zero(),
		HasDPP:   !r.dpp.Zero(),
	}, nil
}

func (c *memChapter) empty() bool {
	return len(c.lectures) == 0 && c.notes.Zero() && c.dpp.Zero()
}

func (m *memoryStore) findLocked(subject Subject, chapter string) *memChapter {
	for _, r := range m.chapters[subject] {
		if r.name == chapter {
			return r
		}
	}
	return nil
}

func (m *memoryStore) removeLocked(subject Subject, chapter string) {
	recs := m.chapters[subject]
	for i, r := range recs {
		if r.name == chapter {
			m.chapters[subject] = append(recs[:i], recs[i+1:]...)
			return
		}
	}
}

func (m *memoryStore) pruneLocked(subject Subject) {
	if len(m.chapters[subject]) == 0 {
		delete(m.chapters, subject)
	}
}
