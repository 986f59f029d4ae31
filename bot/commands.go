package bot

import (
	"log/slog"
	"time"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/core/logger"
	tg "github.com/teamhackers/boardbooster/core/telegram"
	"github.com/teamhackers/boardbooster/core/telegram/commands"
	tghelpers "github.com/teamhackers/boardbooster/core/telegram/helpers"
	"github.com/teamhackers/boardbooster/users"

	tele "gopkg.in/telebot.v4"
)

const helpText = `Board Booster keeps lectures, notes and practice sets organized by subject and chapter.

/start — open the main menu
/help — this message

Browse with the buttons; every file is a couple of taps away.`

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.cmdStart,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.cmdHelp,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.cmdAdmin,
		Description: "Open the admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.cmdCancel,
		Description: "Abort the current upload",
		AdminOnly:   true,
		Hidden:      true,
	})
}

// cmdStart registers the sender for future broadcasts and shows the home
// screen. Registration failures are logged but never block the menu.
func (a *App) cmdStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u := c.Sender()
	if u != nil {
		err := a.reg.Ensure(ctx, users.User{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			JoinedAt:  time.Now(),
		})
		if err != nil {
			logger.USERS.Log(ctx, slog.LevelWarn, "registration failed",
				slog.String("event", "users.ensure"),
				slog.Int64("user_id", u.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	scr, err := a.engine.Navigate(ctx, action.OpenHome{})
	if err != nil {
		return err
	}
	return a.render(c, scr)
}

func (a *App) cmdHelp(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (a *App) cmdAdmin(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	scr, err := a.engine.Navigate(ctx, action.OpenAdmin{})
	if err != nil {
		return err
	}
	return a.render(c, scr)
}

func (a *App) cmdCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	a.wiz.Cancel(c.Sender().ID)
	scr, err := a.engine.Navigate(ctx, action.OpenAdmin{})
	if err != nil {
		return err
	}
	scr.Notice = "Upload flow closed."
	return a.render(c, scr)
}
