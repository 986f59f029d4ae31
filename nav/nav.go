// Package nav derives screens from actions. The engine is pure with respect
// to session state: every screen is computed from the action token and the
// current catalog, so stale tokens degrade to a not-found screen instead of
// failing.
package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
)

// SubjectInfo pairs a subject code with its display title.
type SubjectInfo struct {
	Code  catalog.Subject
	Title string
}

// Engine turns actions into screens by reading the catalog.
type Engine struct {
	store    catalog.Store
	subjects []SubjectInfo
}

func New(store catalog.Store, subjects []SubjectInfo) *Engine {
	return &Engine{store: store, subjects: subjects}
}

var typeTitle = map[catalog.ContentType]string{
	catalog.TypeLecture: "Lectures",
	catalog.TypeNotes:   "Notes",
	catalog.TypeDPP:     "DPP",
}

// Navigate computes the screen for a browsing or management action. Catalog
// misses produce a degraded screen with a nil error; only persistence
// failures surface as errors.
func (e *Engine) Navigate(ctx context.Context, a action.Action) (Screen, error) {
	switch a := a.(type) {
	case action.OpenHome:
		return e.home(), nil
	case action.OpenSubjects:
		return e.subjectList(a.Mode), nil
	case action.OpenChapters:
		return e.chapterList(ctx, a.Mode, a.Subject)
	case action.OpenTypes:
		return e.typeList(ctx, a.Subject, a.ChapterTok)
	case action.OpenLectures:
		return e.lectureList(ctx, a.Subject, a.ChapterTok)
	case action.Deliver:
		return e.deliver(ctx, a)
	case action.OpenAdmin:
		return e.adminPanel(), nil
	case action.OpenChapterMenu:
		return e.chapterMenu(ctx, a.Subject, a.ChapterTok)
	}
	return e.gone(action.OpenHome{}), nil
}

func (e *Engine) home() Screen {
	return Screen{
		Text: "Welcome to Board Booster! Pick a subject to start browsing.",
		Rows: [][]Button{
			row(Button{Label: "📚 Browse subjects", Do: action.OpenSubjects{Mode: action.ModeBrowse}}),
		},
	}
}

func (e *Engine) subjectList(mode action.Mode) Screen {
	var text string
	switch mode {
	case action.ModeManage:
		text = "Manage chapters: pick a subject."
	case action.ModeIngest:
		text = "Add content: pick a subject."
	default:
		text = "Pick a subject:"
	}
	s := Screen{Text: text}
	for _, si := range e.subjects {
		s.Rows = append(s.Rows, row(Button{
			Label: si.Title,
			Do:    action.OpenChapters{Mode: mode, Subject: si.Code},
		}))
	}
	if mode == action.ModeBrowse {
		s.Rows = append(s.Rows, row(Button{Label: "⬅️ Back", Do: action.OpenHome{}}))
	} else {
		s.Rows = append(s.Rows, row(Button{Label: "⬅️ Back", Do: action.OpenAdmin{}}))
	}
	return s
}

func (e *Engine) chapterList(ctx context.Context, mode action.Mode, subj catalog.Subject) (Screen, error) {
	names, err := e.store.ListChapters(ctx, subj)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownSubject) {
			return e.gone(action.OpenSubjects{Mode: mode}), nil
		}
		return Screen{}, err
	}
	back := row(Button{Label: "⬅️ Back", Do: action.OpenSubjects{Mode: mode}})

	if len(names) == 0 && mode != action.ModeIngest {
		return Screen{
			Text: fmt.Sprintf("No content in %s yet. Check back soon!", e.title(subj)),
			Rows: [][]Button{back},
		}, nil
	}

	s := Screen{Text: fmt.Sprintf("%s chapters:", e.title(subj))}
	for _, name := range names {
		tok := catalog.EncodeChapterToken(name)
		var do action.Action
		switch mode {
		case action.ModeManage:
			do = action.OpenChapterMenu{Subject: subj, ChapterTok: tok}
		case action.ModeIngest:
			do = action.PickWizardChapter{Subject: subj, ChapterTok: tok}
		default:
			do = action.OpenTypes{Subject: subj, ChapterTok: tok}
		}
		s.Rows = append(s.Rows, row(Button{Label: name, Do: do}))
	}
	if mode == action.ModeIngest {
		s.Text = fmt.Sprintf("Add content to %s: pick a chapter or create one.", e.title(subj))
		s.Rows = append(s.Rows, row(Button{Label: "➕ New chapter", Do: action.NewWizardChapter{Subject: subj}}))
	}
	s.Rows = append(s.Rows, back)
	return s, nil
}

func (e *Engine) typeList(ctx context.Context, subj catalog.Subject, tok string) (Screen, error) {
	ch, sum, screen, err := e.summary(ctx, subj, tok, action.OpenChapters{Mode: action.ModeBrowse, Subject: subj})
	if err != nil || screen != nil {
		return deref(screen), err
	}
	chTok := catalog.EncodeChapterToken(ch.Name)
	s := Screen{Text: fmt.Sprintf("%s → %s\nWhat do you need?", e.title(subj), ch.Name)}
	if len(sum.Lectures) > 0 {
		s.Rows = append(s.Rows, row(Button{
			Label: fmt.Sprintf("🎥 Lectures (%d)", len(sum.Lectures)),
			Do:    action.OpenLectures{Subject: subj, ChapterTok: chTok},
		}))
	}
	if sum.HasNotes {
		s.Rows = append(s.Rows, row(Button{
			Label: "📒 Notes",
			Do:    action.Deliver{Subject: subj, ChapterTok: chTok, Type: catalog.TypeNotes},
		}))
	}
	if sum.HasDPP {
		s.Rows = append(s.Rows, row(Button{
			Label: "📝 DPP",
			Do:    action.Deliver{Subject: subj, ChapterTok: chTok, Type: catalog.TypeDPP},
		}))
	}
	if sum.Empty() {
		s.Text = fmt.Sprintf("%s → %s\nNothing here yet.", e.title(subj), ch.Name)
	}
	s.Rows = append(s.Rows, row(Button{
		Label: "⬅️ Back",
		Do:    action.OpenChapters{Mode: action.ModeBrowse, Subject: subj},
	}))
	return s, nil
}

func (e *Engine) lectureList(ctx context.Context, subj catalog.Subject, tok string) (Screen, error) {
	ch, sum, screen, err := e.summary(ctx, subj, tok, action.OpenChapters{Mode: action.ModeBrowse, Subject: subj})
	if err != nil || screen != nil {
		return deref(screen), err
	}
	chTok := catalog.EncodeChapterToken(ch.Name)
	if len(sum.Lectures) == 0 {
		return e.gone(action.OpenTypes{Subject: subj, ChapterTok: chTok}), nil
	}
	s := Screen{Text: fmt.Sprintf("%s → %s → Lectures", e.title(subj), ch.Name)}
	var btns []Button
	for _, no := range sum.Lectures {
		btns = append(btns, Button{
			Label: "L" + no,
			Do:    action.Deliver{Subject: subj, ChapterTok: chTok, Type: catalog.TypeLecture, LectureNo: no},
		})
		if len(btns) == 4 {
			s.Rows = append(s.Rows, btns)
			btns = nil
		}
	}
	if len(btns) > 0 {
		s.Rows = append(s.Rows, btns)
	}
	s.Rows = append(s.Rows, row(Button{Label: "⬅️ Back", Do: action.OpenTypes{Subject: subj, ChapterTok: chTok}}))
	return s, nil
}

func (e *Engine) deliver(ctx context.Context, a action.Deliver) (Screen, error) {
	ch, err := e.store.ResolveChapter(ctx, a.Subject, a.ChapterTok)
	if err != nil {
		if isGone(err) {
			return e.gone(action.OpenChapters{Mode: action.ModeBrowse, Subject: a.Subject}), nil
		}
		return Screen{}, err
	}
	ref, err := e.store.GetContent(ctx, a.Subject, ch.Name, a.Type, a.LectureNo)
	if err != nil {
		if isGone(err) {
			// The chapter still exists, so re-offer its content types
			// instead of a dead-end screen.
			scr, terr := e.typeList(ctx, a.Subject, catalog.EncodeChapterToken(ch.Name))
			if terr != nil {
				return Screen{}, terr
			}
			scr.Notice = fmt.Sprintf("%s is not available for this chapter.", typeTitle[a.Type])
			return scr, nil
		}
		return Screen{}, err
	}
	chTok := catalog.EncodeChapterToken(ch.Name)
	caption := fmt.Sprintf("%s · %s · %s", e.title(a.Subject), ch.Name, typeTitle[a.Type])
	if a.Type.Multi() {
		caption = fmt.Sprintf("%s · %s · Lecture %s", e.title(a.Subject), ch.Name, a.LectureNo)
	}
	var followUp []Button
	if a.Type.Multi() {
		followUp = append(followUp, Button{Label: "🎥 More lectures", Do: action.OpenLectures{Subject: a.Subject, ChapterTok: chTok}})
	}
	followUp = append(followUp, Button{Label: "⬅️ Back", Do: action.OpenTypes{Subject: a.Subject, ChapterTok: chTok}})
	return Screen{
		Text: "Anything else?",
		Rows: [][]Button{followUp},
		File: &Delivery{
			Subject:   a.Subject,
			Chapter:   ch,
			Type:      a.Type,
			LectureNo: a.LectureNo,
			Ref:       ref,
			Caption:   caption,
		},
	}, nil
}

func (e *Engine) adminPanel() Screen {
	return Screen{
		Text: "Admin panel",
		Rows: [][]Button{
			row(Button{Label: "➕ Add content", Do: action.OpenSubjects{Mode: action.ModeIngest}}),
			row(Button{Label: "🗂 Manage chapters", Do: action.OpenSubjects{Mode: action.ModeManage}}),
			row(Button{Label: "👥 Users", Do: action.OpenUsers{}}),
			row(Button{Label: "🚪 Exit", Do: action.ExitAdmin{}}),
		},
	}
}

func (e *Engine) chapterMenu(ctx context.Context, subj catalog.Subject, tok string) (Screen, error) {
	back := action.OpenChapters{Mode: action.ModeManage, Subject: subj}
	ch, sum, screen, err := e.summary(ctx, subj, tok, back)
	if err != nil || screen != nil {
		return deref(screen), err
	}
	chTok := catalog.EncodeChapterToken(ch.Name)
	target := func(scope action.Scope, no string) action.Target {
		return action.Target{Scope: scope, Subject: subj, ChapterTok: chTok, LectureNo: no}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s\n", e.title(subj), ch.Name)
	fmt.Fprintf(&b, "Lectures: %d · Notes: %s · DPP: %s", len(sum.Lectures), yn(sum.HasNotes), yn(sum.HasDPP))

	s := Screen{Text: b.String()}
	if len(sum.Lectures) > 0 {
		var btns []Button
		for _, no := range sum.Lectures {
			btns = append(btns, Button{Label: "🗑 L" + no, Do: action.ProposeDelete{Target: target(action.ScopeLecture, no)}})
			if len(btns) == 4 {
				s.Rows = append(s.Rows, btns)
				btns = nil
			}
		}
		if len(btns) > 0 {
			s.Rows = append(s.Rows, btns)
		}
		s.Rows = append(s.Rows, row(Button{Label: "🗑 All lectures", Do: action.ProposeDelete{Target: target(action.ScopeAllLectures, "")}}))
	}
	if sum.HasNotes {
		s.Rows = append(s.Rows, row(Button{Label: "🗑 Notes", Do: action.ProposeDelete{Target: target(action.ScopeNotes, "")}}))
	}
	if sum.HasDPP {
		s.Rows = append(s.Rows, row(Button{Label: "🗑 DPP", Do: action.ProposeDelete{Target: target(action.ScopeDPP, "")}}))
	}
	s.Rows = append(s.Rows,
		row(Button{Label: "🗑 Delete chapter", Do: action.ProposeDelete{Target: target(action.ScopeChapter, "")}}),
		row(Button{Label: "⬅️ Back", Do: back}),
	)
	return s, nil
}

// summary resolves a chapter token and loads its counts, returning a ready
// degraded screen when the chapter is gone.
func (e *Engine) summary(ctx context.Context, subj catalog.Subject, tok string, back action.Action) (catalog.Chapter, catalog.TypeCounts, *Screen, error) {
	ch, err := e.store.ResolveChapter(ctx, subj, tok)
	if err != nil {
		if isGone(err) {
			s := e.gone(back)
			return catalog.Chapter{}, catalog.TypeCounts{}, &s, nil
		}
		return catalog.Chapter{}, catalog.TypeCounts{}, nil, err
	}
	sum, err := e.store.Summary(ctx, subj, ch.Name)
	if err != nil {
		if isGone(err) {
			s := e.gone(back)
			return catalog.Chapter{}, catalog.TypeCounts{}, &s, nil
		}
		return catalog.Chapter{}, catalog.TypeCounts{}, nil, err
	}
	return ch, sum, nil, nil
}

// gone is the degraded screen for stale tokens: the referenced item no
// longer exists, so offer a way back instead of an error.
func (e *Engine) gone(back action.Action) Screen {
	return Screen{
		Text:   "That item is no longer available.",
		Notice: "Not available anymore",
		Rows: [][]Button{
			row(Button{Label: "⬅️ Back", Do: back}),
			row(Button{Label: "🏠 Home", Do: action.OpenHome{}}),
		},
	}
}

func (e *Engine) title(subj catalog.Subject) string {
	for _, si := range e.subjects {
		if si.Code == subj {
			return si.Title
		}
	}
	return string(subj)
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func isGone(err error) bool {
	return errors.Is(err, catalog.ErrChapterNotFound) ||
		errors.Is(err, catalog.ErrContentAbsent) ||
		errors.Is(err, catalog.ErrUnknownSubject)
}

func deref(s *Screen) Screen {
	if s == nil {
		return Screen{}
	}
	return *s
}
