package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/nav"
	"github.com/teamhackers/boardbooster/users"
)

// usersList renders the registered-user management screen.
func (a *App) usersList(ctx context.Context) (nav.Screen, error) {
	list, err := a.reg.List(ctx)
	if err != nil {
		return nav.Screen{}, err
	}
	scr := nav.Screen{Text: fmt.Sprintf("Registered users: %d", len(list))}
	now := time.Now()
	for _, u := range list {
		label := displayName(u)
		if u.BlockedAt(now) {
			label = "🚫 " + label
		}
		scr.Rows = append(scr.Rows, []nav.Button{
			{Label: label, Do: action.OpenUserDetail{UserID: u.ID}},
		})
	}
	scr.Rows = append(scr.Rows, []nav.Button{
		{Label: "⬅️ Back", Do: action.OpenAdmin{}},
	})
	return scr, nil
}

// userDetail renders one user with moderation actions.
func (a *App) userDetail(ctx context.Context, id int64, notice string) (nav.Screen, error) {
	u, err := a.reg.Get(ctx, id)
	if errors.Is(err, users.ErrNotFound) {
		return nav.Screen{
			Text: "That user is no longer registered.",
			Rows: [][]nav.Button{
				{{Label: "⬅️ Back", Do: action.OpenUsers{}}},
			},
		}, nil
	}
	if err != nil {
		return nav.Screen{}, err
	}

	now := time.Now()
	text := fmt.Sprintf("%s\nID: %d\nWarnings: %d/%d", displayName(u), u.ID, u.Warnings, users.MaxWarnings)
	switch {
	case u.Blocked:
		text += "\nBlocked: yes (manual)"
	case u.BlockedAt(now):
		text += fmt.Sprintf("\nBlocked: until %s", u.BlockedTo.Format("2006-01-02 15:04"))
	default:
		text += "\nBlocked: no"
	}

	toggle := nav.Button{Label: "🚫 Block", Do: action.BlockUser{UserID: u.ID}}
	if u.BlockedAt(now) {
		toggle = nav.Button{Label: "✅ Unblock", Do: action.UnblockUser{UserID: u.ID}}
	}
	return nav.Screen{
		Text:   text,
		Notice: notice,
		Rows: [][]nav.Button{
			{toggle},
			{{Label: "⬅️ Back", Do: action.OpenUsers{}}},
		},
	}, nil
}

func (a *App) setBlocked(ctx context.Context, id int64, blocked bool) (nav.Screen, error) {
	if err := a.reg.SetBlocked(ctx, id, blocked); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return a.userDetail(ctx, id, "")
		}
		return nav.Screen{}, err
	}
	notice := "User unblocked."
	if blocked {
		notice = "User blocked."
	}
	return a.userDetail(ctx, id, notice)
}

func displayName(u users.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("id %d", u.ID)
}
