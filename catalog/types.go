// Package catalog owns the subject → chapter → content-type hierarchy,
// chapter token encoding, and the persistent store behind it.
package catalog

import (
	"regexp"
	"strings"
)

// Subject is a fixed deploy-time subject code such as "physics".
type Subject string

// ContentType identifies one of the three kinds of study material.
type ContentType string

const (
	// TypeLecture holds multiple video entries keyed by lecture number.
	TypeLecture ContentType = "lecture"
	// TypeNotes holds a single PDF of chapter notes.
	TypeNotes ContentType = "notes"
	// TypeDPP holds a single PDF of daily practice problems.
	TypeDPP ContentType = "dpp"
)

// ContentTypes lists all content types in display order.
var ContentTypes = []ContentType{TypeLecture, TypeNotes, TypeDPP}

// ParseContentType maps a raw token to a ContentType.
func ParseContentType(raw string) (ContentType, bool) {
	switch ContentType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeLecture:
		return TypeLecture, true
	case TypeNotes:
		return TypeNotes, true
	case TypeDPP:
		return TypeDPP, true
	}
	return "", false
}

// Multi reports whether the type holds multiple entries per chapter.
func (t ContentType) Multi() bool { return t == TypeLecture }

// Chapter is a resolved chapter within a subject.
type Chapter struct {
	Subject Subject
	Name    string
}

// FileRef points at stored binary content. The platform file handle is
// preferred for re-delivery; Path is the on-disk fallback. Either field may
// be empty, never both.
type FileRef struct {
	FileID string `db:"file_id"`
	Path   string `db:"file_path"`
}

// Zero reports whether the reference points at nothing.
func (f FileRef) Zero() bool { return f.FileID == "" && f.Path == "" }

/// lectureNoRe: one or more digits, optional "." + digits, optional single
// trailing letter ("3", "2.1", "4A").
var lectureNoRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[A-Za-z]?$`)

// maxLectureNo caps lecture number tokens so callback payloads carrying one
// fit the transport's 64-byte callback data limit.
const maxLectureNo = 8

// ValidLectureNo reports whether s is an acceptable lecture number token.
func ValidLectureNo(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) <= maxLectureNo && lectureNoRe.MatchString(s)
}

// TypeCounts summarizes stored content for one chapter.
type TypeCounts struct {
	Lectures   []string // lecture numbers, numeric-aware order
	HasNotes   bool
	HasDPP     bool
}

// Empty reports whether the chapter holds no content at all.
func (c TypeCounts) Empty() bool {
	return len(c.Lectures) == 0 && !c.HasNotes && !c.HasDPP
}
