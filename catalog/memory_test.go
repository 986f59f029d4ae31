package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() Store {
	return NewMemoryStore([]Subject{"physics", "chemistry", "maths", "english"})
}

func TestResolveChapterViaEncodedToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	names := []string{"Motion", "Laws of Motion", "Work, Energy & Power"}
	for _, name := range names {
		require.NoError(t, st.CreateChapter(ctx, "physics", name))
	}
	for _, name := range names {
		ch, err := st.ResolveChapter(ctx, "physics", EncodeChapterToken(name))
		require.NoError(t, err)
		assert.Equal(t, name, ch.Name)
	}
}

func TestResolveChapterFallbacks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.CreateChapter(ctx, "physics", "Laws of Motion"))

	// slug fallback
	ch, err := st.ResolveChapter(ctx, "physics", "laws-of-motion")
	require.NoError(t, err)
	assert.Equal(t, "Laws of Motion", ch.Name)

	// normalized fallback
	ch, err = st.ResolveChapter(ctx, "physics", "LAWSOFMOTION")
	require.NoError(t, err)
	assert.Equal(t, "Laws of Motion", ch.Name)

	_, err = st.ResolveChapter(ctx, "physics", "gravitation")
	assert.ErrorIs(t, err, ErrChapterNotFound)

	// same token under another subject resolves nothing
	_, err = st.ResolveChapter(ctx, "chemistry", "laws-of-motion")
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestCreateChapterRejectsCollisions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.CreateChapter(ctx, "physics", "Laws of Motion"))

	assert.ErrorIs(t, st.CreateChapter(ctx, "physics", "Laws of Motion"), ErrChapterExists)
	// slug collision: differs only by stripped punctuation
	assert.ErrorIs(t, st.CreateChapter(ctx, "physics", "Laws-of-Motion!"), ErrChapterExists)
	// normalized collision
	assert.ErrorIs(t, st.CreateChapter(ctx, "physics", "laws of motion"), ErrChapterExists)
	// fine in a different subject
	assert.NoError(t, st.CreateChapter(ctx, "maths", "Laws of Motion"))

	assert.ErrorIs(t, st.CreateChapter(ctx, "biology", "Cells"), ErrUnknownSubject)
}

func TestPutContentIdempotentOverwrite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "old"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "new"}))

	nos, err := st.ListLectureNumbers(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, nos, "re-upload must not duplicate the entry")

	ref, err := st.GetContent(ctx, "physics", "Motion", TypeLecture, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", ref.FileID, "latest upload wins")
}

func TestNotesSingleValued(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeNotes, "", FileRef{FileID: "v1"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeNotes, "", FileRef{FileID: "v2"}))
	ref, err := st.GetContent(ctx, "physics", "Motion", TypeNotes, "")
	require.NoError(t, err)
	assert.Equal(t, "v2", ref.FileID)
}

func TestGetContentAbsent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "f"}))

	_, err := st.GetContent(ctx, "physics", "Motion", TypeNotes, "")
	assert.ErrorIs(t, err, ErrContentAbsent)
	_, err = st.GetContent(ctx, "physics", "Motion", TypeLecture, "9")
	assert.ErrorIs(t, err, ErrContentAbsent)
	_, err = st.GetContent(ctx, "physics", "Gravitation", TypeNotes, "")
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestDeleteChapterCascades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "a"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeNotes, "", FileRef{FileID: "b"}))

	require.NoError(t, st.DeleteChapter(ctx, "physics", "Motion"))

	_, err := st.ResolveChapter(ctx, "physics", EncodeChapterToken("Motion"))
	assert.ErrorIs(t, err, ErrChapterNotFound)
	names, err := st.ListChapters(ctx, "physics")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLectureLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "l1"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "2", FileRef{FileID: "l2"}))

	nos, err := st.ListLectureNumbers(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, nos)

	require.NoError(t, st.DeleteContent(ctx, "physics", "Motion", TypeLecture, "1"))
	nos, err = st.ListLectureNumbers(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, nos)

	// deleting the last lecture removes the whole chapter: nothing else exists
	require.NoError(t, st.DeleteContent(ctx, "physics", "Motion", TypeLecture, "2"))
	_, err = st.ResolveChapter(ctx, "physics", "motion")
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestDeleteLastLectureKeepsChapterWithNotes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, "1", FileRef{FileID: "l1"}))
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeNotes, "", FileRef{FileID: "n1"}))

	require.NoError(t, st.DeleteContent(ctx, "physics", "Motion", TypeLecture, "1"))

	ch, err := st.ResolveChapter(ctx, "physics", "motion")
	require.NoError(t, err)
	sum, err := st.Summary(ctx, "physics", ch.Name)
	require.NoError(t, err)
	assert.Empty(t, sum.Lectures)
	assert.True(t, sum.HasNotes)
}

func TestDeleteAllLectures(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	for _, no := range []string{"1", "2", "3"} {
		require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeLecture, no, FileRef{FileID: no}))
	}
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeDPP, "", FileRef{FileID: "d"}))

	require.NoError(t, st.DeleteContent(ctx, "physics", "Motion", TypeLecture, ""))

	sum, err := st.Summary(ctx, "physics", "Motion")
	require.NoError(t, err)
	assert.Empty(t, sum.Lectures)
	assert.True(t, sum.HasDPP)
}

func TestUpdateFileID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.PutContent(ctx, "physics", "Motion", TypeNotes, "", FileRef{Path: "/tmp/notes.pdf"}))
	require.NoError(t, st.UpdateFileID(ctx, "physics", "Motion", TypeNotes, "", "cached-id"))

	ref, err := st.GetContent(ctx, "physics", "Motion", TypeNotes, "")
	require.NoError(t, err)
	assert.Equal(t, "cached-id", ref.FileID)
	assert.Equal(t, "/tmp/notes.pdf", ref.Path)

	assert.ErrorIs(t, st.UpdateFileID(ctx, "physics", "Motion", TypeDPP, "", "x"), ErrContentAbsent)
}

func TestEmptySubjectListsEmpty(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	names, err := st.ListChapters(ctx, "english")
	require.NoError(t, err)
	assert.Empty(t, names)
}
