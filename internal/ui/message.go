package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/services"
	"github.com/desertthunder/searchviz/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTick MsgKind = iota
	MsgFlush
	MsgProgressUpdate
	MsgSearchDone
	MsgRunRecorded
)

type tick struct {
	generation uint64
	deadline   time.Time
}

type progressPayload struct {
	run    string
	update services.ProgressUpdate
}

type donePayload struct {
	run  string
	done tasks.SearchDone
}

type recordPayload struct {
	run *models.Run
	err error
}

// tickMsg is the constructor for [MsgTick]. A tick whose generation no longer matches the scheduler's
// belongs to a cleared run and is dropped.
func tickMsg(generation uint64, deadline time.Time) Msg {
	return Msg{kind: MsgTick, data: tick{generation: generation, deadline: deadline}}
}

// flushMsg is the constructor for [MsgFlush]
func flushMsg() Msg {
	return Msg{kind: MsgFlush}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(run string, update services.ProgressUpdate) Msg {
	return Msg{
		kind: MsgProgressUpdate,
		data: progressPayload{run: run, update: update},
	}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(run string, done tasks.SearchDone) Msg {
	return Msg{
		kind: MsgSearchDone,
		data: donePayload{run: run, done: done},
	}
}

// runRecordedMsg is the constructor for [MsgRunRecorded]
func runRecordedMsg(run *models.Run, err error) Msg {
	return Msg{
		kind: MsgRunRecorded,
		data: recordPayload{run: run, err: err},
	}
}
