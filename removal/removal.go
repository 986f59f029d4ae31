// Package removal implements the two-step deletion workflow. A proposal
// re-resolves its target and summarizes what will be removed; confirmation
// re-resolves again before executing, so a target deleted in between
// degrades gracefully instead of failing.
package removal

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
	"github.com/teamhackers/boardbooster/nav"
)

// Files removes stored files after their catalog entries are gone. Removal
// is best effort; a missing file is not an error worth surfacing.
type Files interface {
	Remove(path string) error
}

// Service executes proposals against the catalog.
type Service struct {
	store catalog.Store
	files Files
}

// New builds a Service. files may be nil when no local copies are kept.
func New(store catalog.Store, files Files) *Service {
	return &Service{store: store, files: files}
}

// Propose renders the confirmation screen for a deletion target.
func (s *Service) Propose(ctx context.Context, t action.Target) (nav.Screen, error) {
	ch, sum, err := s.resolve(ctx, t)
	if err != nil {
		if isGone(err) {
			return gone(t), nil
		}
		return nav.Screen{}, err
	}
	text, ok := describe(t, ch, sum)
	if !ok {
		return gone(t), nil
	}
	return nav.Screen{
		Text: text,
		Rows: [][]nav.Button{
			{
				{Label: "✅ Yes, delete", Do: action.ConfirmDelete{Target: t}},
				{Label: "❌ Cancel", Do: action.CancelDelete{Target: t}},
			},
		},
	}, nil
}

// Confirm re-validates the target and executes the deletion.
func (s *Service) Confirm(ctx context.Context, t action.Target) (nav.Screen, error) {
	ch, sum, err := s.resolve(ctx, t)
	if err != nil {
		if isGone(err) {
			return gone(t), nil
		}
		return nav.Screen{}, err
	}
	if _, ok := describe(t, ch, sum); !ok {
		return gone(t), nil
	}

	paths := s.affectedPaths(ctx, t, ch, sum)

	switch t.Scope {
	case action.ScopeChapter:
		err = s.store.DeleteChapter(ctx, t.Subject, ch.Name)
	case action.ScopeAllLectures:
		err = s.store.DeleteContent(ctx, t.Subject, ch.Name, catalog.TypeLecture, "")
	case action.ScopeLecture:
		err = s.store.DeleteContent(ctx, t.Subject, ch.Name, catalog.TypeLecture, t.LectureNo)
	case action.ScopeNotes:
		err = s.store.DeleteContent(ctx, t.Subject, ch.Name, catalog.TypeNotes, "")
	case action.ScopeDPP:
		err = s.store.DeleteContent(ctx, t.Subject, ch.Name, catalog.TypeDPP, "")
	default:
		return gone(t), nil
	}
	if err != nil {
		if isGone(err) {
			return gone(t), nil
		}
		return nav.Screen{}, err
	}

	if s.files != nil {
		for _, p := range paths {
			_ = s.files.Remove(p)
		}
	}

	back := action.Action(action.OpenChapterMenu{Subject: t.Subject, ChapterTok: t.ChapterTok})
	if t.Scope == action.ScopeChapter || chapterEmptyAfter(t, sum) {
		back = action.OpenChapters{Mode: action.ModeManage, Subject: t.Subject}
	}
	return nav.Screen{
		Text:   "Deleted.",
		Notice: "Deleted",
		Rows: [][]nav.Button{
			{{Label: "⬅️ Back", Do: back}},
		},
	}, nil
}

func (s *Service) resolve(ctx context.Context, t action.Target) (catalog.Chapter, catalog.TypeCounts, error) {
	ch, err := s.store.ResolveChapter(ctx, t.Subject, t.ChapterTok)
	if err != nil {
		return catalog.Chapter{}, catalog.TypeCounts{}, err
	}
	sum, err := s.store.Summary(ctx, t.Subject, ch.Name)
	if err != nil {
		return catalog.Chapter{}, catalog.TypeCounts{}, err
	}
	return ch, sum, nil
}

// describe renders the proposal text, reporting ok=false when the target's
// specific content is already gone.
func describe(t action.Target, ch catalog.Chapter, sum catalog.TypeCounts) (string, bool) {
	switch t.Scope {
	case action.ScopeChapter:
		return fmt.Sprintf("Delete chapter %q with %d lecture(s), notes: %s, DPP: %s?",
			ch.Name, len(sum.Lectures), yn(sum.HasNotes), yn(sum.HasDPP)), true
	case action.ScopeAllLectures:
		if len(sum.Lectures) == 0 {
			return "", false
		}
		return fmt.Sprintf("Delete all %d lecture(s) of %q?", len(sum.Lectures), ch.Name), true
	case action.ScopeLecture:
		for _, no := range sum.Lectures {
			if no == t.LectureNo {
				return fmt.Sprintf("Delete lecture %s of %q?", t.LectureNo, ch.Name), true
			}
		}
		return "", false
	case action.ScopeNotes:
		if !sum.HasNotes {
			return "", false
		}
		return fmt.Sprintf("Delete the notes of %q?", ch.Name), true
	case action.ScopeDPP:
		if !sum.HasDPP {
			return "", false
		}
		return fmt.Sprintf("Delete the DPP of %q?", ch.Name), true
	}
	return "", false
}

// affectedPaths collects local file paths that will be orphaned by the
// deletion, before the catalog rows disappear.
func (s *Service) affectedPaths(ctx context.Context, t action.Target, ch catalog.Chapter, sum catalog.TypeCounts) []string {
	if s.files == nil {
		return nil
	}
	var refs []catalog.FileRef
	get := func(ct catalog.ContentType, no string) {
		if ref, err := s.store.GetContent(ctx, t.Subject, ch.Name, ct, no); err == nil {
			refs = append(refs, ref)
		}
	}
	switch t.Scope {
	case action.ScopeChapter:
		for _, no := range sum.Lectures {
			get(catalog.TypeLecture, no)
		}
		if sum.HasNotes {
			get(catalog.TypeNotes, "")
		}
		if sum.HasDPP {
			get(catalog.TypeDPP, "")
		}
	case action.ScopeAllLectures:
		for _, no := range sum.Lectures {
			get(catalog.TypeLecture, no)
		}
	case action.ScopeLecture:
		get(catalog.TypeLecture, t.LectureNo)
	case action.ScopeNotes:
		get(catalog.TypeNotes, "")
	case action.ScopeDPP:
		get(catalog.TypeDPP, "")
	}
	var paths []string
	for _, r := range refs {
		if r.Path != "" {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func chapterEmptyAfter(t action.Target, sum catalog.TypeCounts) bool {
	switch t.Scope {
	case action.ScopeAllLectures:
		return !sum.HasNotes && !sum.HasDPP
	case action.ScopeLecture:
		return len(sum.Lectures) == 1 && !sum.HasNotes && !sum.HasDPP
	case action.ScopeNotes:
		return len(sum.Lectures) == 0 && !sum.HasDPP
	case action.ScopeDPP:
		return len(sum.Lectures) == 0 && !sum.HasNotes
	}
	return false
}

func gone(t action.Target) nav.Screen {
	return nav.Screen{
		Text:   "That item is no longer available.",
		Notice: "Already gone",
		Rows: [][]nav.Button{
			{{Label: "⬅️ Back", Do: action.OpenChapters{Mode: action.ModeManage, Subject: t.Subject}}},
		},
	}
}

func isGone(err error) bool {
	return errors.Is(err, catalog.ErrChapterNotFound) ||
		errors.Is(err, catalog.ErrContentAbsent) ||
		errors.Is(err, catalog.ErrUnknownSubject)
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
