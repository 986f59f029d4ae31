// Package wizard drives the admin upload flow: subject, chapter, content
// type, lecture number, file. Each transition validates against the catalog
// so a draft can never persist inconsistent content.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
	"github.com/teamhackers/boardbooster/nav"
)

// maxChapterName bounds typed chapter names. Telegram button labels get
// ugly past this anyway.
const maxChapterName = 64

// UploadKind classifies the incoming attachment.
type UploadKind int

const (
	KindOther UploadKind = iota
	KindVideo
	KindDocument
)

// pdfMIME is the only document type accepted for notes and DPP uploads.
const pdfMIME = "application/pdf"

// Upload is the transport-independent view of a received file.
type Upload struct {
	Kind   UploadKind
	FileID string
	Path   string

	// MIME is the declared media type, when the transport exposes one.
	MIME string
}

// Saved describes one persisted upload for observers.
type Saved struct {
	Subject   catalog.Subject
	Chapter   string
	Type      catalog.ContentType
	LectureNo string
}

// Service owns wizard sessions and applies transitions.
type Service struct {
	store    catalog.Store
	sessions Sessions

	// OnSaved, when set, is called after every successful upload. It must
	// not block: failures there never roll back the persisted content.
	OnSaved func(ctx context.Context, s Saved)
}

func New(store catalog.Store, sessions Sessions) *Service {
	return &Service{store: store, sessions: sessions}
}

// Active reports whether the user has a wizard draft expecting input.
func (s *Service) Active(userID int64) bool {
	d, ok := s.sessions.Get(userID)
	return ok && d.Step != StepNone
}

// Cancel drops the user's draft, if any.
func (s *Service) Cancel(userID int64) {
	s.sessions.Clear(userID)
}

// PickChapter resolves an existing chapter and moves to type selection.
func (s *Service) PickChapter(ctx context.Context, userID int64, subj catalog.Subject, tok string) (nav.Screen, error) {
	ch, err := s.store.ResolveChapter(ctx, subj, tok)
	if err != nil {
		if isGone(err) {
			return goneScreen(subj), nil
		}
		return nav.Screen{}, err
	}
	s.sessions.Put(userID, Draft{Step: StepType, Subject: subj, Chapter: ch.Name})
	return s.typeScreen(subj, ch.Name, ""), nil
}

// NewChapter switches the draft to free-text chapter entry.
func (s *Service) NewChapter(userID int64, subj catalog.Subject) nav.Screen {
	s.sessions.Put(userID, Draft{Step: StepChapterName, Subject: subj})
	return nav.Screen{
		Text: "Send the name of the new chapter.",
		Rows: cancelRow(),
	}
}

// PickType records the content type and asks for the next input: a lecture
// number for lectures, the file itself otherwise.
func (s *Service) PickType(ctx context.Context, userID int64, ct catalog.ContentType) (nav.Screen, error) {
	d, ok := s.sessions.Get(userID)
	if !ok || d.Chapter == "" {
		return expiredScreen(), nil
	}
	d.Type = ct
	if !ct.Multi() {
		d.Step = StepFile
		d.LectureNo = ""
		s.sessions.Put(userID, d)
		return nav.Screen{
			Text: fmt.Sprintf("Send the %s document (PDF) for %q.", strings.ToLower(typeWord(ct)), d.Chapter),
			Rows: cancelRow(),
		}, nil
	}
	nos, err := s.store.ListLectureNumbers(ctx, d.Subject, d.Chapter)
	if err != nil && !isGone(err) {
		return nav.Screen{}, err
	}
	d.Step = StepLectureNo
	s.sessions.Put(userID, d)
	return nav.Screen{
		Text: fmt.Sprintf("Send the lecture number for %q (suggested: %s).", d.Chapter, catalog.NextLectureNo(nos)),
		Rows: cancelRow(),
	}, nil
}

// HandleText consumes a text message when the draft expects one. The second
// return value reports whether the wizard claimed the message.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) (nav.Screen, bool, error) {
	d, ok := s.sessions.Get(userID)
	if !ok {
		return nav.Screen{}, false, nil
	}
	switch d.Step {
	case StepChapterName:
		scr, err := s.acceptChapterName(ctx, &d, text)
		if err != nil {
			return nav.Screen{}, true, err
		}
		s.sessions.Put(userID, d)
		return scr, true, nil
	case StepLectureNo:
		no := strings.TrimSpace(text)
		if !catalog.ValidLectureNo(no) {
			return nav.Screen{
				Text: fmt.Sprintf("%q is not a valid lecture number. Use forms like 3, 2.1 or 4A.", no),
				Rows: cancelRow(),
			}, true, nil
		}
		d.LectureNo = no
		d.Step = StepFile
		s.sessions.Put(userID, d)
		note := ""
		if s.lectureExists(ctx, d, no) {
			note = " This number already exists and will be replaced."
		}
		return nav.Screen{
			Text: fmt.Sprintf("Send the video for lecture %s of %q.%s", no, d.Chapter, note),
			Rows: cancelRow(),
		}, true, nil
	}
	return nav.Screen{}, false, nil
}

// HandleUpload persists the file when the draft expects one, then loops back
// to type selection so the admin can keep uploading into the same chapter.
func (s *Service) HandleUpload(ctx context.Context, userID int64, up Upload) (nav.Screen, bool, error) {
	d, ok := s.sessions.Get(userID)
	if !ok || d.Step != StepFile {
		return nav.Screen{}, false, nil
	}
	if want, got := expectedKind(d.Type), up.Kind; want != got {
		return nav.Screen{
			Text: wrongKindMessage(d.Type),
			Rows: cancelRow(),
		}, true, nil
	}
	if !d.Type.Multi() && up.MIME != "" && up.MIME != pdfMIME {
		return nav.Screen{
			Text: fmt.Sprintf("%s must be a PDF. Send a PDF document.", typeWord(d.Type)),
			Rows: cancelRow(),
		}, true, nil
	}
	ref := catalog.FileRef{FileID: up.FileID, Path: up.Path}
	if err := s.store.PutContent(ctx, d.Subject, d.Chapter, d.Type, d.LectureNo, ref); err != nil {
		return nav.Screen{}, true, err
	}
	if s.OnSaved != nil {
		s.OnSaved(ctx, Saved{Subject: d.Subject, Chapter: d.Chapter, Type: d.Type, LectureNo: d.LectureNo})
	}
	saved := fmt.Sprintf("Saved %s for %q.", typeWord(d.Type), d.Chapter)
	if d.Type.Multi() {
		saved = fmt.Sprintf("Saved lecture %s of %q.", d.LectureNo, d.Chapter)
	}
	d.Step = StepType
	d.Type = ""
	d.LectureNo = ""
	s.sessions.Put(userID, d)
	return s.typeScreen(d.Subject, d.Chapter, saved+" Add more?"), true, nil
}

func (s *Service) acceptChapterName(ctx context.Context, d *Draft, raw string) (nav.Screen, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" || utf8.RuneCountInString(name) > maxChapterName {
		return nav.Screen{
			Text: fmt.Sprintf("Chapter names must be 1 to %d characters. Try again.", maxChapterName),
			Rows: cancelRow(),
		}, nil
	}
	err := s.store.CreateChapter(ctx, d.Subject, name)
	switch {
	case errors.Is(err, catalog.ErrChapterExists):
		return nav.Screen{
			Text: fmt.Sprintf("A chapter named %q already exists here. Pick it from the list or send a different name.", name),
			Rows: [][]nav.Button{
				{{Label: "📋 Chapter list", Do: action.OpenChapters{Mode: action.ModeIngest, Subject: d.Subject}}},
				{{Label: "❌ Cancel", Do: action.ExitAdmin{}}},
			},
		}, nil
	case err != nil:
		return nav.Screen{}, err
	}
	d.Chapter = name
	d.Step = StepType
	return s.typeScreen(d.Subject, name, fmt.Sprintf("Chapter %q created.", name)), nil
}

func (s *Service) typeScreen(subj catalog.Subject, chapter, prefix string) nav.Screen {
	text := fmt.Sprintf("Adding to %q. What are you uploading?", chapter)
	if prefix != "" {
		text = prefix + "\n" + text
	}
	return nav.Screen{
		Text: text,
		Rows: [][]nav.Button{
			{
				{Label: "🎥 Lecture", Do: action.PickWizardType{Type: catalog.TypeLecture}},
				{Label: "📒 Notes", Do: action.PickWizardType{Type: catalog.TypeNotes}},
				{Label: "📝 DPP", Do: action.PickWizardType{Type: catalog.TypeDPP}},
			},
			{
				{Label: "⬅️ Back", Do: action.OpenChapters{Mode: action.ModeIngest, Subject: subj}},
				{Label: "🚪 Exit", Do: action.ExitAdmin{}},
			},
		},
	}
}

func (s *Service) lectureExists(ctx context.Context, d Draft, no string) bool {
	_, err := s.store.GetContent(ctx, d.Subject, d.Chapter, catalog.TypeLecture, no)
	return err == nil
}

func expectedKind(ct catalog.ContentType) UploadKind {
	if ct == catalog.TypeLecture {
		return KindVideo
	}
	return KindDocument
}

func wrongKindMessage(ct catalog.ContentType) string {
	if ct == catalog.TypeLecture {
		return "Lectures must be videos. Send a video file."
	}
	return fmt.Sprintf("%s must be a document. Send a PDF.", typeWord(ct))
}

func typeWord(ct catalog.ContentType) string {
	switch ct {
	case catalog.TypeNotes:
		return "Notes"
	case catalog.TypeDPP:
		return "DPP"
	}
	return "Lecture"
}

func cancelRow() [][]nav.Button {
	return [][]nav.Button{
		{{Label: "❌ Cancel", Do: action.ExitAdmin{}}},
	}
}

func expiredScreen() nav.Screen {
	return nav.Screen{
		Text: "This upload session has expired. Start again from the admin panel.",
		Rows: [][]nav.Button{
			{{Label: "🛠 Admin panel", Do: action.OpenAdmin{}}},
		},
	}
}

func goneScreen(subj catalog.Subject) nav.Screen {
	return nav.Screen{
		Text: "That chapter is no longer available.",
		Rows: [][]nav.Button{
			{{Label: "⬅️ Back", Do: action.OpenChapters{Mode: action.ModeIngest, Subject: subj}}},
		},
	}
}

func isGone(err error) bool {
	return errors.Is(err, catalog.ErrChapterNotFound) ||
		errors.Is(err, catalog.ErrContentAbsent) ||
		errors.Is(err, catalog.ErrUnknownSubject)
}
