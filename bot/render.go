package bot

import (
	"io"
	"log/slog"
	"path"

	"github.com/teamhackers/boardbooster/catalog"
	"github.com/teamhackers/boardbooster/core/logger"
	tghelpers "github.com/teamhackers/boardbooster/core/telegram/helpers"
	"github.com/teamhackers/boardbooster/core/telegram/keyboard"
	"github.com/teamhackers/boardbooster/nav"

	tele "gopkg.in/telebot.v4"
)

// render shows a screen to the current chat. Callback updates edit the
// originating message in place; everything else sends a new one.
func (a *App) render(c tele.Context, scr nav.Screen) error {
	if scr.File != nil {
		return a.sendContent(c, scr)
	}

	text := scr.Text
	if scr.Notice != "" {
		if text == "" {
			text = scr.Notice
		} else {
			text = scr.Notice + "\n\n" + text
		}
	}
	markup := markupFor(scr)

	if c.Callback() != nil {
		if markup != nil {
			return c.EditOrSend(text, markup)
		}
		return c.EditOrSend(text)
	}
	var opts *tele.SendOptions
	if markup != nil {
		opts = &tele.SendOptions{ReplyMarkup: markup}
	}
	if opts != nil {
		return tghelpers.SendText(c, text, opts)
	}
	return tghelpers.SendText(c, text)
}

// sendContent delivers the referenced file, preferring the cached platform
// handle and falling back to the disk copy. A successful disk send refreshes
// the cached handle.
func (a *App) sendContent(c tele.Context, scr nav.Screen) error {
	d := scr.File
	markup := markupFor(scr)
	ctx := tghelpers.BuildContext(c)

	if d.Ref.FileID != "" {
		media := mediaFromID(d)
		if _, err := c.Bot().Send(c.Recipient(), media, sendOpts(markup)); err == nil {
			logger.FILES.Log(ctx, slog.LevelDebug, "content sent",
				slog.String("event", "files.send"),
				slog.String("cache", "hit"),
				slog.String("subject", string(d.Subject)),
				slog.String("chapter", d.Chapter.Name),
				slog.String("content_type", string(d.Type)),
			)
			return nil
		} else {
			logger.FILES.Log(ctx, slog.LevelWarn, "cached handle rejected",
				slog.String("event", "files.send"),
				slog.String("cache", "miss"),
				slog.String("err", err.Error()),
			)
		}
	}

	if d.Ref.Path == "" {
		return c.Send("That file is temporarily unavailable. Try again later.")
	}

	rc, err := a.files.Open(d.Ref.Path)
	if err != nil {
		logger.FILES.Log(ctx, slog.LevelError, "disk fallback failed",
			slog.String("event", "files.open"),
			slog.String("err", err.Error()),
		)
		return c.Send("That file is temporarily unavailable. Try again later.")
	}
	defer rc.Close()

	media := mediaFromReader(d, rc)
	msg, err := c.Bot().Send(c.Recipient(), media, sendOpts(markup))
	if err != nil {
		return err
	}

	if id := sentFileID(msg); id != "" {
		if err := a.store.UpdateFileID(ctx, d.Subject, d.Chapter.Name, d.Type, d.LectureNo, id); err != nil {
			logger.FILES.Log(ctx, slog.LevelWarn, "handle refresh failed",
				slog.String("event", "files.cache_refresh"),
				slog.String("err", err.Error()),
			)
		} else {
			logger.FILES.Log(ctx, slog.LevelDebug, "handle refreshed",
				slog.String("event", "files.cache_refresh"),
				slog.String("subject", string(d.Subject)),
				slog.String("chapter", d.Chapter.Name),
			)
		}
	}
	return nil
}

func sendOpts(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ReplyMarkup: markup}
}

func mediaFromID(d *nav.Delivery) any {
	if d.Type == catalog.TypeLecture {
		return &tele.Video{File: tele.File{FileID: d.Ref.FileID}, Caption: d.Caption}
	}
	return &tele.Document{File: tele.File{FileID: d.Ref.FileID}, Caption: d.Caption}
}

func mediaFromReader(d *nav.Delivery, r io.Reader) any {
	name := path.Base(d.Ref.Path)
	if d.Type == catalog.TypeLecture {
		return &tele.Video{File: tele.FromReader(r), Caption: d.Caption, FileName: name}
	}
	return &tele.Document{File: tele.FromReader(r), Caption: d.Caption, FileName: name}
}

func sentFileID(msg *tele.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Video != nil {
		return msg.Video.FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}

func markupFor(scr nav.Screen) *tele.ReplyMarkup {
	if len(scr.Rows) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, len(scr.Rows))
	for i, r := range scr.Rows {
		row := make([]keyboard.InlineBtn, len(r))
		for j, b := range r {
			key, payload := b.Do.Token()
			row[j] = keyboard.InlineBtn{Text: b.Label, Unique: key, Data: payload}
		}
		rows[i] = row
	}
	return keyboard.InlineButtonsRows(rows...)
}
