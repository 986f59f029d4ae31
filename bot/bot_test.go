package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
	coreconfig "github.com/teamhackers/boardbooster/core/config"
	"github.com/teamhackers/boardbooster/nav"
	"github.com/teamhackers/boardbooster/storage"
	"github.com/teamhackers/boardbooster/users"
	"github.com/teamhackers/boardbooster/wizard"

	tele "gopkg.in/telebot.v4"
)

func testConfig() *coreconfig.Config {
	return &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{Token: "x", AdminID: 42},
		Catalog: coreconfig.CatalogConfig{Subjects: []coreconfig.SubjectConfig{
			{Code: "physics", Title: "Physics"},
			{Code: "maths", Title: "Maths"},
		}},
	}
}

func testApp(t *testing.T) *App {
	t.Helper()
	store := catalog.NewMemoryStore([]catalog.Subject{"physics", "maths"})
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return New(testConfig(), store, users.NewMemoryRegistry(), files)
}

// failStore simulates a store whose writes and listings fail.
type failStore struct{ catalog.Store }

var errDBDown = errors.New("connection refused")

func (failStore) CreateChapter(context.Context, catalog.Subject, string) error {
	return errDBDown
}

func (failStore) ListChapters(context.Context, catalog.Subject) ([]string, error) {
	return nil, errDBDown
}

// recorderCtx records outbound sends; the embedded interface covers the
// methods a test never reaches.
type recorderCtx struct {
	tele.Context
	sender *tele.User
	msg    *tele.Message
	cb     *tele.Callback
	kv     map[string]any
	sent   []string
}

func newRecorderCtx(userID int64) *recorderCtx {
	return &recorderCtx{sender: &tele.User{ID: userID}, kv: map[string]any{}}
}

func (r *recorderCtx) Sender() *tele.User       { return r.sender }
func (r *recorderCtx) Chat() *tele.Chat         { return &tele.Chat{ID: r.sender.ID} }
func (r *recorderCtx) Update() tele.Update      { return tele.Update{ID: 1} }
func (r *recorderCtx) Message() *tele.Message   { return r.msg }
func (r *recorderCtx) Callback() *tele.Callback { return r.cb }

func (r *recorderCtx) Text() string {
	if r.msg != nil {
		return r.msg.Text
	}
	return ""
}

func (r *recorderCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		r.sent = append(r.sent, s)
	}
	return nil
}

func (r *recorderCtx) Get(key string) interface{}    { return r.kv[key] }
func (r *recorderCtx) Set(key string, v interface{}) { r.kv[key] = v }

func TestAdminActionClassification(t *testing.T) {
	admin := []action.Action{
		action.OpenAdmin{},
		action.OpenChapterMenu{Subject: "physics", ChapterTok: "motion"},
		action.ProposeDelete{},
		action.ConfirmDelete{},
		action.CancelDelete{},
		action.PickWizardChapter{Subject: "physics", ChapterTok: "motion"},
		action.NewWizardChapter{Subject: "physics"},
		action.PickWizardType{Type: catalog.TypeNotes},
		action.ExitAdmin{},
		action.OpenUsers{},
		action.OpenUserDetail{UserID: 7},
		action.BlockUser{UserID: 7},
		action.UnblockUser{UserID: 7},
		action.OpenSubjects{Mode: action.ModeManage},
		action.OpenChapters{Mode: action.ModeIngest, Subject: "physics"},
	}
	for _, a := range admin {
		assert.True(t, adminAction(a), "%T must require admin", a)
	}

	public := []action.Action{
		action.OpenHome{},
		action.OpenSubjects{Mode: action.ModeBrowse},
		action.OpenChapters{Mode: action.ModeBrowse, Subject: "physics"},
		action.OpenTypes{Subject: "physics", ChapterTok: "motion"},
		action.OpenLectures{Subject: "physics", ChapterTok: "motion"},
		action.Deliver{Subject: "physics", ChapterTok: "motion", Type: catalog.TypeNotes},
	}
	for _, a := range public {
		assert.False(t, adminAction(a), "%T must stay public", a)
	}
}

func TestAnnounceTextUsesTitlesAndEscapes(t *testing.T) {
	app := testApp(t)

	text := app.announceText(wizard.Saved{
		Subject: "physics", Chapter: "Laws_of Motion", Type: catalog.TypeLecture, LectureNo: "3",
	})
	assert.Contains(t, text, "Physics")
	assert.Contains(t, text, "Lecture 3")
	assert.NotContains(t, text, "Laws_of", "underscore must be escaped")

	text = app.announceText(wizard.Saved{Subject: "maths", Chapter: "Algebra", Type: catalog.TypeNotes})
	assert.Contains(t, text, "Maths")
	assert.Contains(t, text, "Notes")
}

func TestMarkupEncodesActionTokens(t *testing.T) {
	scr := nav.Screen{
		Text: "Pick a subject:",
		Rows: [][]nav.Button{
			{{Label: "Physics", Do: action.OpenChapters{Mode: action.ModeBrowse, Subject: "physics"}}},
			{{Label: "⬅️ Back", Do: action.OpenHome{}}},
		},
	}
	markup := markupFor(scr)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)

	btn := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Physics", btn.Text)
	assert.Contains(t, btn.Data, action.KeyChapters)
	assert.Contains(t, btn.Data, "physics")

	assert.Nil(t, markupFor(nav.Screen{Text: "no buttons"}))
}

func TestUsersListAndDetail(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	require.NoError(t, app.reg.Ensure(ctx, users.User{ID: 7, Username: "rohan", JoinedAt: time.Now()}))
	require.NoError(t, app.reg.Ensure(ctx, users.User{ID: 9, FirstName: "Priya", JoinedAt: time.Now()}))

	scr, err := app.usersList(ctx)
	require.NoError(t, err)
	assert.Contains(t, scr.Text, "2")
	// one row per user plus the back row
	require.Len(t, scr.Rows, 3)
	assert.Equal(t, "@rohan", scr.Rows[0][0].Label)
	assert.Equal(t, "Priya", scr.Rows[1][0].Label)

	detail, err := app.userDetail(ctx, 7, "")
	require.NoError(t, err)
	assert.Contains(t, detail.Text, "@rohan")
	assert.Contains(t, detail.Text, "Blocked: no")
	assert.Equal(t, "🚫 Block", detail.Rows[0][0].Label)
}

func TestSetBlockedTogglesDetail(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	require.NoError(t, app.reg.Ensure(ctx, users.User{ID: 7, Username: "rohan", JoinedAt: time.Now()}))

	scr, err := app.setBlocked(ctx, 7, true)
	require.NoError(t, err)
	assert.Equal(t, "User blocked.", scr.Notice)
	assert.Contains(t, scr.Text, "Blocked: yes")
	assert.Equal(t, "✅ Unblock", scr.Rows[0][0].Label)

	scr, err = app.setBlocked(ctx, 7, false)
	require.NoError(t, err)
	assert.Equal(t, "User unblocked.", scr.Notice)
	assert.Contains(t, scr.Text, "Blocked: no")
}

func TestUserDetailUnknownUserDegrades(t *testing.T) {
	app := testApp(t)
	scr, err := app.userDetail(context.Background(), 12345, "")
	require.NoError(t, err)
	assert.Contains(t, scr.Text, "no longer registered")
}

func TestWizardStoreFailureNotifiesAdmin(t *testing.T) {
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	st := failStore{catalog.NewMemoryStore([]catalog.Subject{"physics"})}
	app := New(testConfig(), st, users.NewMemoryRegistry(), files)

	app.wiz.NewChapter(42, "physics")
	c := newRecorderCtx(42)
	c.msg = &tele.Message{Text: "Motion"}

	err = app.handleWizardInput(c)
	require.ErrorIs(t, err, errDBDown)
	require.NotEmpty(t, c.sent, "the admin must hear about the failed save")
	assert.Contains(t, c.sent[0], "nothing was saved")
}

func TestCallbackStoreFailureNotifiesUser(t *testing.T) {
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	st := failStore{catalog.NewMemoryStore([]catalog.Subject{"physics"})}
	app := New(testConfig(), st, users.NewMemoryRegistry(), files)

	c := newRecorderCtx(7)
	key, payload := action.OpenChapters{Mode: action.ModeBrowse, Subject: "physics"}.Token()
	c.cb = &tele.Callback{Data: "\f" + key + "|" + payload}

	err = app.handleCallback(c)
	require.ErrorIs(t, err, errDBDown)
	require.NotEmpty(t, c.sent)
	assert.Contains(t, c.sent[0], "Nothing was changed")
}

func TestExitAdminReturnsToMainMenu(t *testing.T) {
	app := testApp(t)
	app.wiz.NewChapter(42, "physics")
	c := newRecorderCtx(42)

	scr, err := app.dispatch(context.Background(), c, action.ExitAdmin{})
	require.NoError(t, err)
	assert.False(t, app.wiz.Active(42), "exit must clear the draft")
	assert.Equal(t, "Upload flow closed.", scr.Notice)
	assert.Contains(t, scr.Text, "Welcome")
}
