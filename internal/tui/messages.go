package tui

import (
	"time"

	"github.com/dm/snapreport/internal/model"
)

// ReportMsg delivers the reports of a finished run to the TUI.
type ReportMsg struct {
	Reports  []*model.DatacenterReport
	Finished time.Time
}

// FetchErrorMsg signals a run failure.
type FetchErrorMsg struct{ Err error }
