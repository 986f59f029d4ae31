package nav

import (
	"github.com/teamhackers/boardbooster/action"
	"github.com/teamhackers/boardbooster/catalog"
)

// Button is a labelled action. The transport layer encodes Do into the
// callback token; nav never sees raw strings.
type Button struct {
	Label string
	Do    action.Action
}

// Screen is a fully derived view: text, inline actions, and optionally a
// file to send alongside. Screens carry no session state.
type Screen struct {
	Text string
	Rows [][]Button

	// Notice is an optional status line the renderer prepends to Text.
	// Callbacks are answered before handlers run, so it cannot ride on the
	// callback answer itself.
	Notice string

	// File, when set, asks the transport to deliver the referenced content
	// before showing Rows as follow-up actions.
	File *Delivery
}

// Delivery identifies one stored file to send.
type Delivery struct {
	Subject   catalog.Subject
	Chapter   catalog.Chapter
	Type      catalog.ContentType
	LectureNo string
	Ref       catalog.FileRef
	Caption   string
}

func row(btns ...Button) []Button { return btns }
