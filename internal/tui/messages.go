package tui

import (
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/review"
)

// editorLoadedMsg delivers the opened import.
type editorLoadedMsg struct {
	editor ocr.Editor
}

// pageSizeMsg reports the pixel size of a fetched page image.
type pageSizeMsg struct {
	page   int
	width  int
	height int
}

// editorMsg carries the outcome of an editor effect back into the reducer.
type editorMsg struct {
	cmd ocr.Command
}

// correctionsSavedMsg reports a completed save with the corrections it submitted.
type correctionsSavedMsg struct {
	saved model.Corrections
}

// queueMsg carries a review command. Commands from the poller re-arm the listener.
type queueMsg struct {
	cmd        review.Command
	fromPoller bool
}

// pollerStoppedMsg reports that the poller goroutine returned.
type pollerStoppedMsg struct {
	err error
}

// errorMsg reports a failure outside the reducers.
type errorMsg struct {
	err     error
	context string
}
