package removal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
)

type fakeFiles struct{ removed []string }

func (f *fakeFiles) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func newTestService(t *testing.T) (*Service, catalog.Store, *fakeFiles) {
	t.Helper()
	st := catalog.NewMemoryStore([]catalog.Subject{"physics", "chemistry"})
	ff := &fakeFiles{}
	return New(st, ff), st, ff
}

func seed(t *testing.T, st catalog.Store) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeLecture, "1", catalog.FileRef{FileID: "l1", Path: "/data/l1.mp4"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeLecture, "2", catalog.FileRef{FileID: "l2"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", catalog.TypeNotes, "", catalog.FileRef{FileID: "n1", Path: "/data/n1.pdf"}))
	return catalog.EncodeChapterToken("Motion")
}

func TestProposeSummarizesChapter(t *testing.T) {
	svc, st, _ := newTestService(t)
	tok := seed(t, st)
	s, err := svc.Propose(context.Background(), action.Target{Scope: action.ScopeChapter, Subject: "physics", ChapterTok: tok})
	require.NoError(t, err)
	assert.Contains(t, s.Text, `"Motion"`)
	assert.Contains(t, s.Text, "2 lecture(s)")
	require.Len(t, s.Rows, 1)
	require.Len(t, s.Rows[0], 2)
	assert.IsType(t, action.ConfirmDelete{}, s.Rows[0][0].Do)
	assert.IsType(t, action.CancelDelete{}, s.Rows[0][1].Do)
}

func TestConfirmChapterDeletesEverything(t *testing.T) {
	svc, st, ff := newTestService(t)
	tok := seed(t, st)
	ctx := context.Background()
	s, err := svc.Confirm(ctx, action.Target{Scope: action.ScopeChapter, Subject: "physics", ChapterTok: tok})
	require.NoError(t, err)
	assert.Equal(t, "Deleted.", s.Text)

	_, err = st.ResolveChapter(ctx, "physics", tok)
	assert.ErrorIs(t, err, catalog.ErrChapterNotFound)
	assert.ElementsMatch(t, []string{"/data/l1.mp4", "/data/n1.pdf"}, ff.removed)
}

func TestConfirmSingleLecture(t *testing.T) {
	svc, st, ff := newTestService(t)
	tok := seed(t, st)
	ctx := context.Background()
	_, err := svc.Confirm(ctx, action.Target{Scope: action.ScopeLecture, Subject: "physics", ChapterTok: tok, LectureNo: "1"})
	require.NoError(t, err)

	nos, err := st.ListLectureNumbers(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, nos)
	assert.Equal(t, []string{"/data/l1.mp4"}, ff.removed)
}

func TestConfirmAfterTargetVanishedDegrades(t *testing.T) {
	svc, st, _ := newTestService(t)
	tok := seed(t, st)
	ctx := context.Background()
	target := action.Target{Scope: action.ScopeLecture, Subject: "physics", ChapterTok: tok, LectureNo: "1"}

	// first confirmation wins
	_, err := svc.Confirm(ctx, target)
	require.NoError(t, err)

	// second confirmation of the same token finds nothing and degrades
	s, err := svc.Confirm(ctx, target)
	require.NoError(t, err)
	assert.Contains(t, s.Text, "no longer available")

	nos, err := st.ListLectureNumbers(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, nos, "repeat confirm must not touch other lectures")
}

func TestProposeGoneChapterDegrades(t *testing.T) {
	svc, _, _ := newTestService(t)
	s, err := svc.Propose(context.Background(), action.Target{Scope: action.ScopeChapter, Subject: "physics", ChapterTok: "gravitation"})
	require.NoError(t, err)
	assert.Contains(t, s.Text, "no longer available")
}

func TestProposeAbsentTypeDegrades(t *testing.T) {
	svc, st, _ := newTestService(t)
	tok := seed(t, st)
	s, err := svc.Propose(context.Background(), action.Target{Scope: action.ScopeDPP, Subject: "physics", ChapterTok: tok})
	require.NoError(t, err)
	assert.Contains(t, s.Text, "no longer available")
}

func TestConfirmAllLecturesKeepsNotes(t *testing.T) {
	svc, st, _ := newTestService(t)
	tok := seed(t, st)
	ctx := context.Background()
	_, err := svc.Confirm(ctx, action.Target{Scope: action.ScopeAllLectures, Subject: "physics", ChapterTok: tok})
	require.NoError(t, err)

	sum, err := st.Summary(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Empty(t, sum.Lectures)
	assert.True(t, sum.HasNotes)
}
