package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamhackers/boardbooster/catalog"
)

func roundTrip(t *testing.T, a Action) Action {
	t.Helper()
	key, payload := a.Token()
	parsed, err := Parse(key, payload)
	require.NoError(t, err, "%s|%s", key, payload)
	return parsed
}

func TestRoundTripAllVariants(t *testing.T) {
	tok := catalog.EncodeChapterToken("Laws of Motion")
	actions := []Action{
		OpenHome{},
		OpenSubjects{Mode: ModeBrowse},
		OpenSubjects{Mode: ModeManage},
		OpenChapters{Mode: ModeIngest, Subject: "physics"},
		OpenTypes{Subject: "physics", ChapterTok: tok},
		OpenLectures{Subject: "chemistry", ChapterTok: tok},
		Deliver{Subject: "physics", ChapterTok: tok, Type: catalog.TypeLecture, LectureNo: "2.1"},
		Deliver{Subject: "physics", ChapterTok: tok, Type: catalog.TypeNotes},
		OpenAdmin{},
		OpenChapterMenu{Subject: "maths", ChapterTok: tok},
		ProposeDelete{Target: Target{Scope: ScopeChapter, Subject: "physics", ChapterTok: tok}},
		ConfirmDelete{Target: Target{Scope: ScopeLecture, Subject: "physics", ChapterTok: tok, LectureNo: "3A"}},
		CancelDelete{Target: Target{Scope: ScopeNotes, Subject: "english", ChapterTok: tok}},
		PickWizardChapter{Subject: "physics", ChapterTok: tok},
		NewWizardChapter{Subject: "physics"},
		PickWizardType{Type: catalog.TypeDPP},
		ExitAdmin{},
		OpenUsers{},
		OpenUserDetail{UserID: 42},
		BlockUser{UserID: -1001234},
		UnblockUser{UserID: 7},
	}
	for _, a := range actions {
		assert.Equal(t, a, roundTrip(t, a))
	}
}

func TestDeliverOmitsLectureNoForSingleValuedTypes(t *testing.T) {
	_, payload := Deliver{Subject: "physics", ChapterTok: "motion", Type: catalog.TypeNotes}.Token()
	assert.Equal(t, "physics:motion:notes", payload)

	_, payload = Deliver{Subject: "physics", ChapterTok: "motion", Type: catalog.TypeLecture, LectureNo: "4"}.Token()
	assert.Equal(t, "physics:motion:lecture:4", payload)
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct{ key, payload string }{
		{"nope", ""},
		{KeyChapters, "physics"},
		{KeyChapters, "b:"},
		{KeyTypes, "physics"},
		{KeyGet, "physics:motion"},
		{KeyGet, "physics:motion:stream"},
		{KeyDelete, "p:zz:physics:motion"},
		{KeyDelete, "q:ch:physics:motion"},
		{KeyDelete, "c:l1:physics:motion"},
		{KeyDelete, "c:ch:physics:motion:4"},
		{KeyWizType, "video"},
		{KeyWizNew, ""},
		{KeyUserDetail, "abc"},
	}
	for _, c := range cases {
		_, err := Parse(c.key, c.payload)
		assert.ErrorIs(t, err, ErrMalformed, "%s|%s", c.key, c.payload)
	}
}

// Telegram rejects callback data over 64 bytes, so the full wire frame
// "\f<key>|<payload>" must fit for the widest actions even with long
// chapter names.
func TestCallbackFrameFitsTelegramLimit(t *testing.T) {
	names := []string{
		"Electromagnetic Induction II",
		"Structural Organisation in Animals and Plants",
	}
	for _, name := range names {
		tok := catalog.EncodeChapterToken(name)
		widest := []Action{
			Deliver{Subject: "chemistry", ChapterTok: tok, Type: catalog.TypeLecture, LectureNo: "10"},
			ConfirmDelete{Target: Target{Scope: ScopeLecture, Subject: "chemistry", ChapterTok: tok, LectureNo: "12.34b"}},
			OpenChapterMenu{Subject: "chemistry", ChapterTok: tok},
		}
		for _, a := range widest {
			key, payload := a.Token()
			frame := "\f" + key + "|" + payload
			assert.LessOrEqual(t, len(frame), 64, "%q via %T", name, a)
		}
	}
}

func TestUnknownModeDefaultsToBrowse(t *testing.T) {
	a, err := Parse(KeySubjects, "zz")
	require.NoError(t, err)
	assert.Equal(t, OpenSubjects{Mode: ModeBrowse}, a)
}
