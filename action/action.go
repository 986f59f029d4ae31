// Package action defines the tagged action grammar carried inside callback
// tokens. The transport echoes tokens back verbatim; Parse is the single
// place raw strings become typed actions, and Token is its inverse. Every
// screen transition is reconstructible from the token alone.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/teamhackers/boardbooster/catalog"
)

// ErrMalformed marks tokens that cannot be parsed. Callers degrade to a
// not-found screen, never to a failure.
var ErrMalformed = errors.New("action: malformed token")

// sep separates payload fields. Chapter tokens are built to never contain it.
const sep = ":"

// Mode distinguishes why a subject/chapter list is being shown: plain
// browsing, admin chapter management, or the ingestion wizard.
type Mode string

const (
	ModeBrowse Mode = "b"
	ModeManage Mode = "m"
	ModeIngest Mode = "w"
)

// Callback keys. Each key owns one payload layout.
const (
	KeyHome        = "home"
	KeySubjects    = "subjects"
	KeyChapters    = "subj"
	KeyTypes       = "chap"
	KeyLectures    = "lects"
	KeyGet         = "get"
	KeyAdmin       = "adm"
	KeyChapterMenu = "chmenu"
	KeyDelete      = "del"
	KeyWizChapter  = "wchap"
	KeyWizNew      = "wnew"
	KeyWizType     = "wtype"
	KeyWizExit     = "wexit"
	KeyUsers       = "users"
	KeyUserDetail  = "usr"
	KeyUserBlock   = "ublk"
	KeyUserUnblock = "uunb"
)

// Action is a parsed inbound token. Implementations are the closed set of
// variants below; downstream components switch on the concrete type and
// never re-parse raw strings.
type Action interface {
	// Token renders the action back into (callback key, payload).
	Token() (key, payload string)
}

// OpenHome shows the main menu.
type OpenHome struct{}

// OpenSubjects shows the subject list in the given mode.
type OpenSubjects struct{ Mode Mode }

// OpenChapters shows a subject's chapter list in the given mode.
type OpenChapters struct {
	Mode    Mode
	Subject catalog.Subject
}

// OpenTypes shows the content-type list for a chapter.
type OpenTypes struct {
	Subject    catalog.Subject
	ChapterTok string
}

// OpenLectures shows the lecture-number list for a chapter.
type OpenLectures struct {
	Subject    catalog.Subject
	ChapterTok string
}

// Deliver requests delivery of one stored file.
type Deliver struct {
	Subject    catalog.Subject
	ChapterTok string
	Type       catalog.ContentType
	LectureNo  string
}

// OpenAdmin shows the admin panel.
type OpenAdmin struct{}

// OpenChapterMenu shows the admin per-chapter menu (delete granularities).
type OpenChapterMenu struct {
	Subject    catalog.Subject
	ChapterTok string
}

// Scope selects the granularity of a deletion.
type Scope string

const (
	ScopeChapter     Scope = "ch"
	ScopeAllLectures Scope = "la"
	ScopeLecture     Scope = "l1"
	ScopeNotes       Scope = "nt"
	ScopeDPP         Scope = "dp"
)

// Target identifies what a deletion applies to.
type Target struct {
	Scope      Scope
	Subject    catalog.Subject
	ChapterTok string
	LectureNo  string
}

// ProposeDelete asks for a deletion summary; ConfirmDelete executes it after
// re-validation; CancelDelete returns to the prior screen unchanged.
type ProposeDelete struct{ Target Target }
type ConfirmDelete struct{ Target Target }
type CancelDelete struct{ Target Target }

// PickWizardChapter selects an existing chapter during ingestion.
type PickWizardChapter struct {
	Subject    catalog.Subject
	ChapterTok string
}

// NewWizardChapter switches the wizard to free-text chapter entry.
type NewWizardChapter struct{ Subject catalog.Subject }

// PickWizardType selects the content type during ingestion.
type PickWizardType struct{ Type catalog.ContentType }

// ExitAdmin clears the wizard session unconditionally.
type ExitAdmin struct{}

// OpenUsers shows the registered-user management list.
type OpenUsers struct{}

// OpenUserDetail shows one user with block/unblock actions.
type OpenUserDetail struct{ UserID int64 }

// BlockUser and UnblockUser toggle a user's blocked state.
type BlockUser struct{ UserID int64 }
type UnblockUser struct{ UserID int64 }

func (OpenHome) Token() (string, string)   { return KeyHome, "" }
func (OpenAdmin) Token() (string, string)  { return KeyAdmin, "" }
func (ExitAdmin) Token() (string, string)  { return KeyWizExit, "" }
func (OpenUsers) Token() (string, string)  { return KeyUsers, "" }

func (a OpenSubjects) Token() (string, string) { return KeySubjects, string(a.Mode) }

func (a OpenChapters) Token() (string, string) {
	return KeyChapters, join(string(a.Mode), string(a.Subject))
}

func (a OpenTypes) Token() (string, string) {
	return KeyTypes, join(string(a.Subject), a.ChapterTok)
}

func (a OpenLectures) Token() (string, string) {
	return KeyLectures, join(string(a.Subject), a.ChapterTok)
}

func (a Deliver) Token() (string, string) {
	if a.Type.Multi() {
		return KeyGet, join(string(a.Subject), a.ChapterTok, string(a.Type), a.LectureNo)
	}
	return KeyGet, join(string(a.Subject), a.ChapterTok, string(a.Type))
}

func (a OpenChapterMenu) Token() (string, string) {
	return KeyChapterMenu, join(string(a.Subject), a.ChapterTok)
}

func (t Target) payload() string {
	if t.Scope == ScopeLecture {
		return join(string(t.Scope), string(t.Subject), t.ChapterTok, t.LectureNo)
	}
	return join(string(t.Scope), string(t.Subject), t.ChapterTok)
}

func (a ProposeDelete) Token() (string, string) { return KeyDelete, join("p", a.Target.payload()) }
func (a ConfirmDelete) Token() (string, string) { return KeyDelete, join("c", a.Target.payload()) }
func (a CancelDelete) Token() (string, string)  { return KeyDelete, join("x", a.Target.payload()) }

func (a PickWizardChapter) Token() (string, string) {
	return KeyWizChapter, join(string(a.Subject), a.ChapterTok)
}

func (a NewWizardChapter) Token() (string, string) { return KeyWizNew, string(a.Subject) }
func (a PickWizardType) Token() (string, string)   { return KeyWizType, string(a.Type) }

func (a OpenUserDetail) Token() (string, string) {
	return KeyUserDetail, strconv.FormatInt(a.UserID, 10)
}
func (a BlockUser) Token() (string, string)   { return KeyUserBlock, strconv.FormatInt(a.UserID, 10) }
func (a UnblockUser) Token() (string, string) { return KeyUserUnblock, strconv.FormatInt(a.UserID, 10) }

// Parse maps a (callback key, payload) pair to its action variant.
func Parse(key, payload string) (Action, error) {
	switch key {
	case KeyHome:
		return OpenHome{}, nil
	case KeyAdmin:
		return OpenAdmin{}, nil
	case KeyWizExit:
		return ExitAdmin{}, nil
	case KeyUsers:
		return OpenUsers{}, nil
	case KeySubjects:
		return OpenSubjects{Mode: parseMode(payload)}, nil
	case KeyChapters:
		parts, err := fields(payload, 2)
		if err != nil {
			return nil, err
		}
		return OpenChapters{Mode: parseMode(parts[0]), Subject: catalog.Subject(parts[1])}, nil
	case KeyTypes:
		parts, err := fields(payload, 2)
		if err != nil {
			return nil, err
		}
		return OpenTypes{Subject: catalog.Subject(parts[0]), ChapterTok: parts[1]}, nil
	case KeyLectures:
		parts, err := fields(payload, 2)
		if err != nil {
			return nil, err
		}
		return OpenLectures{Subject: catalog.Subject(parts[0]), ChapterTok: parts[1]}, nil
	case KeyGet:
		parts := strings.Split(payload, sep)
		if len(parts) != 3 && len(parts) != 4 {
			return nil, fmt.Errorf("%w: %s|%s", ErrMalformed, key, payload)
		}
		ct, ok := catalog.ParseContentType(parts[2])
		if !ok {
			return nil, fmt.Errorf("%w: content type %q", ErrMalformed, parts[2])
		}
		a := Deliver{Subject: catalog.Subject(parts[0]), ChapterTok: parts[1], Type: ct}
		if len(parts) == 4 {
			a.LectureNo = parts[3]
		}
		return a, nil
	case KeyChapterMenu:
		parts, err := fields(payload, 2)
		if err != nil {
			return nil, err
		}
		return OpenChapterMenu{Subject: catalog.Subject(parts[0]), ChapterTok: parts[1]}, nil
	case KeyDelete:
		return parseDelete(payload)
	case KeyWizChapter:
		parts, err := fields(payload, 2)
		if err != nil {
			return nil, err
		}
		return PickWizardChapter{Subject: catalog.Subject(parts[0]), ChapterTok: parts[1]}, nil
	case KeyWizNew:
		if payload == "" {
			return nil, fmt.Errorf("%w: empty subject", ErrMalformed)
		}
		return NewWizardChapter{Subject: catalog.Subject(payload)}, nil
	case KeyWizType:
		ct, ok := catalog.ParseContentType(payload)
		if !ok {
			return nil, fmt.Errorf("%w: content type %q", ErrMalformed, payload)
		}
		return PickWizardType{Type: ct}, nil
	case KeyUserDetail, KeyUserBlock, KeyUserUnblock:
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: user id %q", ErrMalformed, payload)
		}
		switch key {
		case KeyUserBlock:
			return BlockUser{UserID: id}, nil
		case KeyUserUnblock:
			return UnblockUser{UserID: id}, nil
		}
		return OpenUserDetail{UserID: id}, nil
	}
	return nil, fmt.Errorf("%w: unknown key %q", ErrMalformed, key)
}

func parseDelete(payload string) (Action, error) {
	parts := strings.SplitN(payload, sep, 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, payload)
	}
	phase, rest := parts[0], parts[1]
	t, err := parseTarget(rest)
	if err != nil {
		return nil, err
	}
	switch phase {
	case "p":
		return ProposeDelete{Target: t}, nil
	case "c":
		return ConfirmDelete{Target: t}, nil
	case "x":
		return CancelDelete{Target: t}, nil
	}
	return nil, fmt.Errorf("%w: delete phase %q", ErrMalformed, phase)
}

func parseTarget(raw string) (Target, error) {
	parts := strings.Split(raw, sep)
	if len(parts) != 3 && len(parts) != 4 {
		return Target{}, fmt.Errorf("%w: target %q", ErrMalformed, raw)
	}
	t := Target{
		Scope:      Scope(parts[0]),
		Subject:    catalog.Subject(parts[1]),
		ChapterTok: parts[2],
	}
	switch t.Scope {
	case ScopeChapter, ScopeAllLectures, ScopeNotes, ScopeDPP:
		if len(parts) != 3 {
			return Target{}, fmt.Errorf("%w: target %q", ErrMalformed, raw)
		}
	case ScopeLecture:
		if len(parts) != 4 || parts[3] == "" {
			return Target{}, fmt.Errorf("%w: target %q", ErrMalformed, raw)
		}
		t.LectureNo = parts[3]
	default:
		return Target{}, fmt.Errorf("%w: scope %q", ErrMalformed, parts[0])
	}
	return t, nil
}

func parseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeManage:
		return ModeManage
	case ModeIngest:
		return ModeIngest
	}
	return ModeBrowse
}

func fields(payload string, n int) ([]string, error) {
	parts := strings.Split(payload, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d fields in %q", ErrMalformed, n, payload)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty field in %q", ErrMalformed, payload)
		}
	}
	return parts, nil
}

func join(parts ...string) string { return strings.Join(parts, sep) }
