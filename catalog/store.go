package catalog

import "context"

// Store owns all persisted hierarchy data. Every mutating call persists
// synchronously before returning and is atomic with respect to the single
// subject/chapter/type/lecture path it touches. Empty chapters and subject
// buckets are pruned after deletes so listings stay accurate.
type Store interface {
	// ListChapters returns chapter display names for a subject in creation
	// order. An unknown or empty subject yields an empty slice, not an error.
	ListChapters(ctx context.Context, subject Subject) ([]string, error)

	// ResolveChapter maps a chapter token back to the stored chapter.
	// Resolution ladder: exact stored name, reversible decode, slug match,
	// case/space-normalized match. ErrChapterNotFound when nothing matches.
	ResolveChapter(ctx context.Context, subject Subject, token string) (Chapter, error)

	// CreateChapter registers a new empty chapter. ErrChapterExists when the
	// name, its slug, or its normalized form collides within the subject.
	CreateChapter(ctx context.Context, subject Subject, name string) error

	// GetContent fetches the file reference for a path. lectureNo is ignored
	// for single-valued types. ErrContentAbsent when nothing is stored.
	GetContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string) (FileRef, error)

	// PutContent upserts a file reference, creating the chapter on demand.
	// Re-uploading an existing path overwrites the previous reference.
	PutContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string, ref FileRef) error

	// UpdateFileID caches a fresh platform handle for already-stored content.
	UpdateFileID(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo, fileID string) error

	// DeleteChapter removes the chapter and cascades to all its content.
	DeleteChapter(ctx context.Context, subject Subject, chapter string) error

	// DeleteContent removes one path: a single lecture when lectureNo is set
	// for the lecture type, all lectures when it is empty, or the single
	// notes/dpp entry.
	DeleteContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string) error

	// ListLectureNumbers returns lecture numbers in numeric-aware order.
	ListLectureNumbers(ctx context.Context, subject Subject, chapter string) ([]string, error)

	// Summary reports what the chapter currently holds.
	Summary(ctx context.Context, subject Subject, chapter string) (TypeCounts, error)
}
