package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/favdl/internal/models"
)

var styles = newTheme(themeColors{
	accent: "#FB7299",
	ok:     "#04B575",
	fail:   "#FF5F5F",
	warn:   "#FFA500",
	muted:  "#626262",
})

type themeColors struct {
	accent, ok, fail, warn, muted string
}

// theme holds the styles shared by every view of the download screen.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	marks map[models.DownloadStatus]string
}

func newTheme(c themeColors) *theme {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	t := &theme{
		title: fg(c.accent).Bold(true).MarginBottom(1),
		ok:    fg(c.ok).Bold(true),
		err:   fg(c.fail).Bold(true),
		warn:  fg(c.warn),
		muted: fg(c.muted).Italic(true),
	}
	t.marks = map[models.DownloadStatus]string{
		models.StatusDownloaded: t.ok.Render("✓"),
		models.StatusFailed:     t.err.Render("✗"),
		models.StatusSkipped:    t.muted.Render("-"),
	}
	return t
}

// mark renders the glyph for a segment outcome.
func (t *theme) mark(s models.DownloadStatus) string {
	if m, ok := t.marks[s]; ok {
		return m
	}
	return t.muted.Render("?")
}
