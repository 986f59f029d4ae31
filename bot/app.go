// Package bot wires the catalog services to Telegram: commands, callback
// routing, screen rendering, file delivery, and the upload conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/broadcast"
	"github.com/teamhackers/boardbooster/catalog"
	coreconfig "github.com/teamhackers/boardbooster/core/config"
	"github.com/teamhackers/boardbooster/core/logger"
	tg "github.com/teamhackers/boardbooster/core/telegram"
	"github.com/teamhackers/boardbooster/core/telegram/format"
	"github.com/teamhackers/boardbooster/core/telegram/router"
	"github.com/teamhackers/boardbooster/nav"
	"github.com/teamhackers/boardbooster/removal"
	"github.com/teamhackers/boardbooster/storage"
	"github.com/teamhackers/boardbooster/users"
	"github.com/teamhackers/boardbooster/wizard"

	tele "gopkg.in/telebot.v4"
)

// App owns every service behind the bot surface.
type App struct {
	cfg    *coreconfig.Config
	engine *nav.Engine
	wiz    *wizard.Service
	rem    *removal.Service
	reg    users.Registry
	bcast  *broadcast.Service
	store  catalog.Store
	files  storage.Store

	// bot is set once the runtime starts; broadcast and delivery need it
	// for sends outside the current update.
	bot atomic.Pointer[tele.Bot]
}

// New assembles the application services on top of the given stores.
func New(cfg *coreconfig.Config, store catalog.Store, reg users.Registry, files storage.Store) *App {
	subjects := make([]nav.SubjectInfo, 0, len(cfg.Catalog.Subjects))
	for _, s := range cfg.Catalog.Subjects {
		subjects = append(subjects, nav.SubjectInfo{Code: catalog.Subject(s.Code), Title: s.Title})
	}

	a := &App{
		cfg:    cfg,
		engine: nav.New(store, subjects),
		wiz:    wizard.New(store, wizard.NewMemorySessions()),
		rem:    removal.New(store, files),
		reg:    reg,
		store:  store,
		files:  files,
	}
	a.bcast = broadcast.New(reg, teleSender{app: a}, 4)
	a.wiz.OnSaved = a.announce
	return a
}

// TelegramRunOptions builds the full runtime wiring: commands, callbacks,
// text/media routes, and the middleware chain.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.cfg == nil {
		return tg.RunOptions{}, fmt.Errorf("bot: nil config")
	}

	reg := tg.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	reg.SetCallbackNotFound(a.UnknownCallback())

	routes := []tg.Route{
		router.CallbackRoute(reg, router.CallbackOptions{NotFound: a.UnknownCallback()}),
	}
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})...)
	routes = append(routes, router.TextRoutes(fsmAdapter{app: a}, reg, router.TextOptions{
		UnknownText:  a.UnknownText(),
		UnknownMedia: a.UnknownMedia(),
	})...)

	mws := tg.DefaultMiddlewares(a.cfg, nil)
	mws = append(mws, tg.Middleware{Name: "access", Use: a.blockGate})

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(nil)
			return nil
		},
	}, nil
}

func (a *App) isAdmin(c tele.Context) bool {
	u := c.Sender()
	return u != nil && u.ID == a.cfg.Telegram.AdminID
}

// blockGate silently drops updates from blocked users. Expired automatic
// blocks are cleared by users.Registry on the next Warn, so reads here are
// enough.
func (a *App) blockGate(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		u := c.Sender()
		if u == nil || u.ID == a.cfg.Telegram.AdminID {
			return next(c)
		}
		rec, err := a.reg.Get(context.Background(), u.ID)
		if err != nil {
			return next(c)
		}
		if rec.BlockedAt(time.Now()) {
			if c.Callback() != nil {
				_ = c.Respond(&tele.CallbackResponse{Text: "You are blocked."})
			}
			logger.USERS.Debug("update dropped",
				slog.String("event", "users.blocked_drop"),
				slog.Int64("user_id", u.ID),
			)
			return nil
		}
		return next(c)
	}
}

// teleSender delivers broadcast messages through the running bot.
type teleSender struct{ app *App }

func (s teleSender) Send(ctx context.Context, userID int64, text string) error {
	b := s.app.bot.Load()
	if b == nil {
		return errors.New("bot: runtime not started")
	}
	_, err := b.Send(&tele.User{ID: userID}, text, tele.ModeMarkdown)
	return err
}

// announce fans out a new-content notification and reports the success count
// to the admin. It runs detached so wizard completion never waits on it.
func (a *App) announce(ctx context.Context, s wizard.Saved) {
	text := a.announceText(s)
	bg := context.WithoutCancel(ctx)
	go func() {
		res, err := a.bcast.SendAll(bg, text)
		if err != nil {
			logger.BCAST.Warn("broadcast aborted",
				slog.String("event", "broadcast.abort"),
				slog.String("err", err.Error()),
			)
			return
		}
		if b := a.bot.Load(); b != nil {
			_, _ = b.Send(&tele.User{ID: a.cfg.Telegram.AdminID},
				fmt.Sprintf("Notified %d users.", res.Sent))
		}
	}()
}

func (a *App) announceText(s wizard.Saved) string {
	what := "Notes"
	switch s.Type {
	case catalog.TypeLecture:
		what = "Lecture " + s.LectureNo
	case catalog.TypeDPP:
		what = "DPP"
	}
	title := string(s.Subject)
	for _, sc := range a.cfg.Catalog.Subjects {
		if sc.Code == string(s.Subject) {
			title = sc.Title
			break
		}
	}
	esc := func(v string) string {
		out, err := format.EscapeMarkdown(v, format.MarkdownV1, "")
		if err != nil {
			return v
		}
		return out
	}
	return fmt.Sprintf("📢 New content: *%s · %s · %s*", esc(title), esc(s.Chapter), esc(what))
}

func adminAction(act action.Action) bool {
	switch a := act.(type) {
	case action.OpenAdmin, action.OpenChapterMenu,
		action.ProposeDelete, action.ConfirmDelete, action.CancelDelete,
		action.PickWizardChapter, action.NewWizardChapter, action.PickWizardType, action.ExitAdmin,
		action.OpenUsers, action.OpenUserDetail, action.BlockUser, action.UnblockUser:
		return true
	case action.OpenSubjects:
		return a.Mode != action.ModeBrowse
	case action.OpenChapters:
		return a.Mode != action.ModeBrowse
	}
	return false
}
