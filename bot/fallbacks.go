package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/core/logger"
	tghelpers "github.com/teamhackers/boardbooster/core/telegram/helpers"
	"github.com/teamhackers/boardbooster/core/telegram/ui"
	"github.com/teamhackers/boardbooster/users"

	tele "gopkg.in/telebot.v4"
)

var _ ui.FallbackProvider = (*App)(nil)

// UnknownText handles free text outside any conversation. Non-admin users
// accumulate warnings; enough of them triggers a temporary block.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if a.isAdmin(c) {
			return tghelpers.SendText(c, "Nothing is awaiting input. Use /admin to manage content.")
		}
		return a.warn(c)
	}
}

// UnknownMedia handles stray attachments the same way as stray text.
func (a *App) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		if a.isAdmin(c) {
			return tghelpers.SendText(c, "Start an upload from the admin panel before sending files.")
		}
		return a.warn(c)
	}
}

// UnknownCallback answers buttons from messages older than the current
// grammar by degrading to the home screen.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		scr, err := a.engine.Navigate(ctx, action.OpenHome{})
		if err != nil {
			return err
		}
		scr.Notice = "That button has expired."
		return a.render(c, scr)
	}
}

func (a *App) warn(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, err := a.reg.Warn(ctx, c.Sender().ID, time.Now())
	if errors.Is(err, users.ErrNotFound) {
		return tghelpers.SendText(c, "Use /start to open the menu.")
	}
	if err != nil {
		logger.USERS.Log(ctx, slog.LevelWarn, "warning failed",
			slog.String("event", "users.warn"),
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Please use the buttons to browse.")
	}
	if u.BlockedAt(time.Now()) {
		return tghelpers.SendText(c,
			fmt.Sprintf("Too many stray messages. You are blocked until %s.",
				u.BlockedTo.Format("2006-01-02 15:04")))
	}
	return tghelpers.SendText(c,
		fmt.Sprintf("Please use the buttons to browse. Warning %d/%d.", u.Warnings, users.MaxWarnings))
}
