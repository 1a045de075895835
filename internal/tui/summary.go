package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/snapreport/internal/format"
	"github.com/dm/snapreport/internal/model"
)

var summaryHeaders = []string{"Datacenter", "Servers", "Snapshot Servers", "Snapshots", "Replicas", "Failed Servers", "Failed Snapshots", "Failed %"}

// RenderSummary renders a static per-datacenter totals table followed by the
// run-wide overview cards. It is printed when the browser is not used.
func RenderSummary(reports []*model.DatacenterReport, width int) string {
	if len(reports) == 0 {
		return StyleDim.Render("no reports")
	}

	rows := make([][]string, 0, len(reports)+1)
	failing := make([]bool, 0, len(reports)+1)
	for _, rep := range reports {
		if rep == nil || rep.Report == nil {
			continue
		}
		t := rep.Report.Totals
		nfs, nfsnap := len(rep.Report.FailedServers), len(rep.Report.FailedSnapshots)
		rows = append(rows, []string{
			sanitize(rep.Datacenter),
			format.FormatCount(t.Servers),
			format.FormatCount(t.EligibleServers),
			format.FormatCount(t.Snapshots),
			format.FormatCount(t.ReplicaSnapshots),
			strconv.Itoa(nfs),
			strconv.Itoa(nfsnap),
			format.FormatRatio(nfsnap, t.Snapshots),
		})
		failing = append(failing, nfs > 0 || nfsnap > 0)
	}
	if len(rows) > 1 {
		t := sumTotals(reports)
		rows = append(rows, []string{
			"Total",
			format.FormatCount(t.Servers),
			format.FormatCount(t.EligibleServers),
			format.FormatCount(t.Snapshots),
			format.FormatCount(t.ReplicaSnapshots),
			strconv.Itoa(t.FailedServers),
			strconv.Itoa(t.FailedSnapshots),
			format.FormatRatio(t.FailedSnapshots, t.Snapshots),
		})
		failing = append(failing, t.FailedServers > 0 || t.FailedSnapshots > 0)
	}

	tbl := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			s := StyleWhite
			switch {
			case col == 0:
				s = StyleBlue
			case col >= 5 && failing[row]:
				s = StyleRed
			case col >= 5:
				s = StyleGreen
			}
			return s.Padding(0, 1)
		})

	var b strings.Builder
	b.WriteString(tbl.Render())
	if o := renderOverview(reports, width); o != "" {
		b.WriteString("\n")
		b.WriteString(o)
	}
	return b.String()
}
