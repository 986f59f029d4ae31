package bot

import (
	"context"
	"log/slog"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/core/logger"
	tg "github.com/teamhackers/boardbooster/core/telegram"
	"github.com/teamhackers/boardbooster/core/telegram/callbacks"
	tghelpers "github.com/teamhackers/boardbooster/core/telegram/helpers"
	"github.com/teamhackers/boardbooster/nav"

	tele "gopkg.in/telebot.v4"
)

// allKeys is the closed set of callback keys the bot answers. Every key is
// dispatched through the same parse-then-switch path.
var allKeys = []string{
	action.KeyHome, action.KeySubjects, action.KeyChapters, action.KeyTypes,
	action.KeyLectures, action.KeyGet, action.KeyAdmin, action.KeyChapterMenu,
	action.KeyDelete, action.KeyWizChapter, action.KeyWizNew, action.KeyWizType,
	action.KeyWizExit, action.KeyUsers, action.KeyUserDetail, action.KeyUserBlock,
	action.KeyUserUnblock,
}

func (a *App) registerCallbacks(reg *tg.Registry) {
	for _, key := range allKeys {
		_ = reg.RegisterCallback(key, a.handleCallback)
	}
}

// handleCallback is the single boundary where raw callback tokens become
// typed actions. Malformed tokens degrade to the stale-button fallback.
func (a *App) handleCallback(c tele.Context) error {
	key := callbacks.CallbackKey(c)
	payload := callbacks.CallbackPayload(c)
	ctx := tghelpers.BuildContext(c)

	act, err := action.Parse(key, payload)
	if err != nil {
		logger.NAV.Log(ctx, slog.LevelDebug, "malformed token",
			slog.String("event", "nav.parse"),
			slog.String("cb_key", key),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
		)
		return a.UnknownCallback()(c)
	}

	if adminAction(act) && !a.isAdmin(c) {
		logger.NAV.Log(ctx, slog.LevelDebug, "admin action rejected",
			slog.String("event", "nav.unauthorized"),
			slog.String("cb_key", key),
			slog.Int64("user_id", c.Sender().ID),
		)
		return nil
	}

	scr, err := a.dispatch(ctx, c, act)
	if err != nil {
		// Store failures must not end in silence: tell the user nothing
		// changed, then let the router log the error.
		_ = tghelpers.SendText(c, "Something went wrong. Nothing was changed. Please try again.")
		return err
	}
	return a.render(c, scr)
}

func (a *App) dispatch(ctx context.Context, c tele.Context, act action.Action) (nav.Screen, error) {
	userID := c.Sender().ID
	switch act := act.(type) {
	case action.ProposeDelete:
		return a.rem.Propose(ctx, act.Target)
	case action.ConfirmDelete:
		return a.rem.Confirm(ctx, act.Target)
	case action.CancelDelete:
		return a.engine.Navigate(ctx, action.OpenChapterMenu{
			Subject:    act.Target.Subject,
			ChapterTok: act.Target.ChapterTok,
		})
	case action.PickWizardChapter:
		return a.wiz.PickChapter(ctx, userID, act.Subject, act.ChapterTok)
	case action.NewWizardChapter:
		return a.wiz.NewChapter(userID, act.Subject), nil
	case action.PickWizardType:
		return a.wiz.PickType(ctx, userID, act.Type)
	case action.ExitAdmin:
		a.wiz.Cancel(userID)
		scr, err := a.engine.Navigate(ctx, action.OpenHome{})
		scr.Notice = "Upload flow closed."
		return scr, err
	case action.OpenUsers:
		return a.usersList(ctx)
	case action.OpenUserDetail:
		return a.userDetail(ctx, act.UserID, "")
	case action.BlockUser:
		return a.setBlocked(ctx, act.UserID, true)
	case action.UnblockUser:
		return a.setBlocked(ctx, act.UserID, false)
	}
	return a.engine.Navigate(ctx, act)
}
