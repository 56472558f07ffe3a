package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.Entry] with its selection state to implement [list.Item].
type entryItem struct {
	index    int
	entry    models.Entry
	selected bool
}

func (i entryItem) FilterValue() string { return i.entry.Title + " " + i.entry.Author }

func (i entryItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %d. %s", mark, i.index+1, i.entry.Title)
}

func (i entryItem) Description() string {
	desc := i.entry.Author
	if i.entry.PageCount > 1 {
		desc = fmt.Sprintf("%s • %d parts", desc, i.entry.PageCount)
	}
	if i.entry.Duration > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.entry.Duration))
	}
	return desc
}
