package nav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
)

var testSubjects = []SubjectInfo{
	{Code: "physics", Title: "Physics"},
	{Code: "chemistry", Title: "Chemistry"},
	{Code: "maths", Title: "Maths"},
	{Code: "english", Title: "English"},
}

func newTestEngine(t *testing.T) (*Engine, catalog.Store) {
	t.Helper()
	codes := make([]catalog.Subject, 0, len(testSubjects))
	for _, si := range testSubjects {
		codes = append(codes, si.Code)
	}
	st := catalog.NewMemoryStore(codes)
	return New(st, testSubjects), st
}

func seed(t *testing.T, st catalog.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeLecture, "1", catalog.FileRef{FileID: "l1"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeLecture, "2", catalog.FileRef{FileID: "l2"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeNotes, "", catalog.FileRef{FileID: "n1"}))
}

// labels flattens a screen's buttons for assertion.
func labels(s Screen) []string {
	var out []string
	for _, r := range s.Rows {
		for _, b := range r {
			out = append(out, b.Label)
		}
	}
	return out
}

func TestSubjectListCarriesMode(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Navigate(context.Background(), action.OpenSubjects{Mode: action.ModeIngest})
	require.NoError(t, err)
	require.NotEmpty(t, s.Rows)
	first := s.Rows[0][0]
	assert.Equal(t, "Physics", first.Label)
	assert.Equal(t, action.OpenChapters{Mode: action.ModeIngest, Subject: "physics"}, first.Do)
}

func TestEmptySubjectShowsLeaf(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Navigate(context.Background(), action.OpenChapters{Mode: action.ModeBrowse, Subject: "english"})
	require.NoError(t, err)
	assert.Contains(t, s.Text, "No content in English yet")
	assert.Equal(t, []string{"⬅️ Back"}, labels(s))
}

func TestTypeListShowsOnlyAvailable(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	s, err := e.Navigate(context.Background(), action.OpenTypes{
		Subject:    "physics",
		ChapterTok: catalog.EncodeChapterToken("Motion"),
	})
	require.NoError(t, err)
	got := labels(s)
	assert.Contains(t, got, "🎥 Lectures (2)")
	assert.Contains(t, got, "📒 Notes")
	assert.NotContains(t, got, "📝 DPP")
}

func TestLectureListOrderedButtons(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()
	for _, no := range []string{"10", "2", "1"} {
		require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeLecture, no, catalog.FileRef{FileID: no}))
	}
	s, err := e.Navigate(ctx, action.OpenLectures{
		Subject:    "physics",
		ChapterTok: catalog.EncodeChapterToken("Motion"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, s.Rows)
	var nos []string
	for _, b := range s.Rows[0] {
		nos = append(nos, b.Label)
	}
	assert.Equal(t, []string{"L1", "L2", "L10"}, nos)
}

func TestDeliverLecture(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	s, err := e.Navigate(context.Background(), action.Deliver{
		Subject:    "physics",
		ChapterTok: catalog.EncodeChapterToken("Motion"),
		Type:       catalog.TypeLecture,
		LectureNo:  "2",
	})
	require.NoError(t, err)
	require.NotNil(t, s.File)
	assert.Equal(t, "l2", s.File.Ref.FileID)
	assert.Equal(t, "Physics · Motion · Lecture 2", s.File.Caption)
	assert.Contains(t, labels(s), "🎥 More lectures")
}

func TestStaleTokenDegradesWithoutError(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	ctx := context.Background()
	tok := catalog.EncodeChapterToken("Motion")
	require.NoError(t, st.DeleteChapter(ctx, "physics", "Motion"))

	for _, a := range []action.Action{
		action.OpenTypes{Subject: "physics", ChapterTok: tok},
		action.OpenLectures{Subject: "physics", ChapterTok: tok},
		action.Deliver{Subject: "physics", ChapterTok: tok, Type: catalog.TypeNotes},
		action.OpenChapterMenu{Subject: "physics", ChapterTok: tok},
	} {
		s, err := e.Navigate(ctx, a)
		require.NoError(t, err, "%T", a)
		assert.Nil(t, s.File)
		assert.Contains(t, s.Text, "no longer available", "%T", a)
	}
}

func TestDeliverAbsentContentReoffersTypes(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	s, err := e.Navigate(context.Background(), action.Deliver{
		Subject:    "physics",
		ChapterTok: catalog.EncodeChapterToken("Motion"),
		Type:       catalog.TypeDPP,
	})
	require.NoError(t, err)
	assert.Nil(t, s.File)
	assert.Contains(t, s.Notice, "DPP is not available")

	// the chapter still exists, so the available siblings come back
	got := labels(s)
	assert.Contains(t, got, "🎥 Lectures (2)")
	assert.Contains(t, got, "📒 Notes")
	assert.NotContains(t, got, "📝 DPP")
}

func TestChapterMenuOffersGranularDeletes(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	s, err := e.Navigate(context.Background(), action.OpenChapterMenu{
		Subject:    "physics",
		ChapterTok: catalog.EncodeChapterToken("Motion"),
	})
	require.NoError(t, err)
	got := labels(s)
	assert.Contains(t, got, "🗑 L1")
	assert.Contains(t, got, "🗑 All lectures")
	assert.Contains(t, got, "🗑 Notes")
	assert.Contains(t, got, "🗑 Delete chapter")
	assert.NotContains(t, got, "🗑 DPP")
}

func TestIngestChapterListOffersNewChapter(t *testing.T) {
	e, st := newTestEngine(t)
	seed(t, st)
	s, err := e.Navigate(context.Background(), action.OpenChapters{Mode: action.ModeIngest, Subject: "physics"})
	require.NoError(t, err)
	got := labels(s)
	assert.Contains(t, got, "Motion")
	assert.Contains(t, got, "➕ New chapter")
}
