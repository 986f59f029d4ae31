package catalog

import "errors"

var (
	// ErrChapterNotFound indicates no chapter matched a name or token after
	// every fallback strategy. Always recoverable: callers render a normal
	// not-found screen.
	ErrChapterNotFound = errors.New("catalog: chapter not found")

	// ErrContentAbsent indicates the chapter exists but holds nothing for the
	// requested content type or lecture number.
	ErrContentAbsent = errors.New("catalog: content not available")

	// ErrChapterExists rejects creation of a chapter whose name, slug or
	// normalized form collides with an existing chapter in the same subject.
	ErrChapterExists = errors.New("catalog: chapter already exists")

	// ErrUnknownSubject rejects operations on a subject code outside the
	// configured set.
	ErrUnknownSubject = errors.New("catalog: unknown subject")

	// ErrBadLectureNo rejects lecture numbers that do not match the expected
	// pattern.
	ErrBadLectureNo = errors.New("catalog: invalid lecture number")
)
