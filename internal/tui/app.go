package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/snapreport/internal/model"
)

// RunFunc produces a fresh set of datacenter reports.
type RunFunc func(ctx context.Context) ([]*model.DatacenterReport, error)

type tab int

const (
	tabServers tab = iota
	tabFailedServers
	tabFailedSnapshots
	tabCount
)

var tabTitles = [tabCount]string{"Servers", "Failed Servers", "Failed Snapshots"}

// App is the root Bubble Tea model of the report browser.
type App struct {
	ctx    context.Context
	run    RunFunc
	target string

	// Run state
	running     bool // true while a fetchCmd goroutine is in-flight
	reports     []*model.DatacenterReport
	lastError   error
	lastUpdated time.Time

	// Tables
	active        tab
	servers       serverTable
	failedServers failedServerTable
	failedSnaps   failedSnapshotTable

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates a report browser. With initial reports the browser opens on
// them; otherwise Init starts a run. target is shown in the header. A nil
// run disables rerunning.
func NewApp(ctx context.Context, run RunFunc, target string, initial []*model.DatacenterReport) *App {
	if ctx == nil {
		ctx = context.Background()
	}
	app := &App{
		ctx:           ctx,
		run:           run,
		target:        target,
		servers:       newServerTable(),
		failedServers: newFailedServerTable(),
		failedSnaps:   newFailedSnapshotTable(),
	}
	app.servers.focused = true
	if len(initial) > 0 {
		app.setReports(initial, time.Now())
	} else {
		app.running = run != nil
	}
	return app
}

// Init implements tea.Model. Starts the first run when no reports were given.
func (app *App) Init() tea.Cmd {
	if app.running {
		return fetchCmd(app.ctx, app.run)
	}
	return nil
}

// Update implements tea.Model, the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		app.resizeTables()

	case ReportMsg:
		app.running = false
		app.lastError = nil
		app.setReports(msg.Reports, msg.Finished)

	case FetchErrorMsg:
		app.running = false
		app.lastError = msg.Err

	case tea.KeyMsg:
		// A table taking search input owns every key.
		if app.activeSearching() {
			return app, app.updateActive(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Rerun):
			if app.running || app.run == nil {
				return app, nil
			}
			app.running = true
			return app, fetchCmd(app.ctx, app.run)
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		case key.Matches(msg, keys.Tab):
			app.focus((app.active + 1) % tabCount)
		case key.Matches(msg, keys.ShiftTab):
			app.focus((app.active + tabCount - 1) % tabCount)
		default:
			return app, app.updateActive(msg)
		}
	}

	return app, nil
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	var parts []string

	parts = append(parts, renderHeader(app))
	if o := renderOverview(app.reports, app.width); o != "" {
		parts = append(parts, o)
	}
	parts = append(parts, app.renderTabs())
	switch app.active {
	case tabServers:
		parts = append(parts, app.servers.renderTable(app.width))
	case tabFailedServers:
		parts = append(parts, app.failedServers.renderTable(app.width))
	case tabFailedSnapshots:
		parts = append(parts, app.failedSnaps.renderTable(app.width))
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

func (app *App) setReports(reports []*model.DatacenterReport, finished time.Time) {
	app.reports = reports
	app.lastUpdated = finished
	servers, failedServers, failedSnaps := flattenReports(reports)
	app.servers.SetData(servers)
	app.failedServers.SetData(failedServers)
	app.failedSnaps.SetData(failedSnaps)
}

func (app *App) runID() string {
	for _, rep := range app.reports {
		if rep != nil {
			return rep.RunID
		}
	}
	return ""
}

func (app *App) focus(t tab) {
	app.active = t
	app.servers.focused = t == tabServers
	app.failedServers.focused = t == tabFailedServers
	app.failedSnaps.focused = t == tabFailedSnapshots
}

func (app *App) activeSearching() bool {
	switch app.active {
	case tabFailedServers:
		return app.failedServers.searching
	case tabFailedSnapshots:
		return app.failedSnaps.searching
	default:
		return app.servers.searching
	}
}

func (app *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch app.active {
	case tabFailedServers:
		app.failedServers, cmd = app.failedServers.Update(msg)
	case tabFailedSnapshots:
		app.failedSnaps, cmd = app.failedSnaps.Update(msg)
	default:
		app.servers, cmd = app.servers.Update(msg)
	}
	return cmd
}

// resizeTables fits the page size to the terminal height: header, overview,
// tabs, table header and footer take about 14 lines.
func (app *App) resizeTables() {
	size := app.height - 14
	if size < 5 {
		size = 5
	}
	app.servers.pageSize = size
	app.failedServers.pageSize = size
	app.failedSnaps.pageSize = size
	app.servers.refresh()
	app.failedServers.refresh()
	app.failedSnaps.refresh()
}

func (app *App) renderTabs() string {
	counts := [tabCount]int{app.servers.Len(), app.failedServers.Len(), app.failedSnaps.Len()}
	tabs := make([]string, tabCount)
	for i := range tabs {
		label := tabTitles[i] + " (" + strconv.Itoa(counts[i]) + ")"
		if tab(i) == app.active {
			tabs[i] = StyleTabActive.Render(label)
		} else {
			tabs[i] = StyleTabInactive.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// fetchCmd is a Bubble Tea command that runs the report and returns a
// ReportMsg or FetchErrorMsg.
func fetchCmd(ctx context.Context, run RunFunc) tea.Cmd {
	return func() tea.Msg {
		reports, err := run(ctx)
		if err != nil {
			return FetchErrorMsg{Err: err}
		}
		return ReportMsg{Reports: reports, Finished: time.Now()}
	}
}
