package bot

import (
	"log/slog"
	"strings"

	"github.com/teamhackers/boardbooster/core/logger"
	tghelpers "github.com/teamhackers/boardbooster/core/telegram/helpers"
	"github.com/teamhackers/boardbooster/nav"
	"github.com/teamhackers/boardbooster/wizard"

	tele "gopkg.in/telebot.v4"
)

// fsmAdapter exposes the wizard to the message router. Only the admin ever
// has an active draft, so InProgress doubles as the admin check.
type fsmAdapter struct{ app *App }

func (f fsmAdapter) InProgress(userID int64) bool {
	return userID == f.app.cfg.Telegram.AdminID && f.app.wiz.Active(userID)
}

func (f fsmAdapter) ManagerHandler(c tele.Context) error {
	return f.app.handleWizardInput(c)
}

// handleWizardInput feeds the pending message into the active draft: text
// for chapter names and lecture numbers, video or document for the file step.
func (a *App) handleWizardInput(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	msg := c.Message()
	if msg == nil {
		return nil
	}

	// Registered commands are routed by the bot before the conversation;
	// anything else that looks like one is not a chapter name.
	if strings.HasPrefix(msg.Text, "/") {
		return tghelpers.SendText(c, "Finish the upload first, or send /cancel.")
	}

	var (
		scr     nav.Screen
		handled bool
		err     error
	)
	switch {
	case msg.Video != nil:
		up := a.intake(c, wizard.KindVideo, msg.Video.MediaFile(), msg.Video.FileName)
		scr, handled, err = a.wiz.HandleUpload(ctx, userID, up)
	case msg.Document != nil:
		up := a.intake(c, wizard.KindDocument, msg.Document.MediaFile(), msg.Document.FileName)
		up.MIME = msg.Document.MIME
		scr, handled, err = a.wiz.HandleUpload(ctx, userID, up)
	case msg.Text != "":
		scr, handled, err = a.wiz.HandleText(ctx, userID, msg.Text)
	default:
		// Unsupported attachment kind while a draft is open.
		scr, handled, err = a.wiz.HandleUpload(ctx, userID, wizard.Upload{Kind: wizard.KindOther})
	}
	if err != nil {
		logger.WIZ.Log(ctx, slog.LevelWarn, "step failed",
			slog.String("event", "wizard.save_failed"),
			slog.String("err", err.Error()),
		)
		_ = tghelpers.SendText(c, "Something went wrong and nothing was saved. Please try again.")
		return err
	}
	if !handled {
		// The draft is waiting for a button press, not this input.
		return tghelpers.SendText(c, "Use the buttons to continue, or send /cancel.")
	}
	return a.render(c, scr)
}

// intake records the platform handle and makes a best-effort durable copy on
// local disk. A failed copy degrades to handle-only storage.
func (a *App) intake(c tele.Context, kind wizard.UploadKind, file *tele.File, name string) wizard.Upload {
	up := wizard.Upload{Kind: kind, FileID: file.FileID}
	ctx := tghelpers.BuildContext(c)

	rc, err := c.Bot().File(file)
	if err != nil {
		logger.FILES.Log(ctx, slog.LevelWarn, "download failed",
			slog.String("event", "files.copy"),
			slog.String("err", err.Error()),
		)
		return up
	}
	defer rc.Close()

	path, err := a.files.Save(rc, name)
	if err != nil {
		logger.FILES.Log(ctx, slog.LevelWarn, "disk copy failed",
			slog.String("event", "files.copy"),
			slog.String("err", err.Error()),
		)
		return up
	}
	up.Path = path
	logger.FILES.Log(ctx, slog.LevelDebug, "disk copy stored",
		slog.String("event", "files.copy"),
		slog.String("payload", path),
	)
	return up
}
