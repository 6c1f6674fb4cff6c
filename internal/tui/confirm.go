package tui

import (
	"fmt"
	"io"
	"strings"

	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/go-airules/internal/pipeline"
	"github.com/jakoblorz/go-airules/internal/rules"
)

// OverwritePrompter asks before existing rule files are replaced. In
// accessible mode the question is asked line by line on In and Out, which
// also works without a terminal.
type OverwritePrompter struct {
	Accessible bool
	In         io.Reader
	Out        io.Writer
}

// Confirm implements pipeline.ConfirmFunc.
func (p OverwritePrompter) Confirm(change rules.Change) (bool, error) {
	overwrite := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", change.RelPath)).
				Description(fmt.Sprintf("%s rules for %s", change.Tool.DisplayName(), strings.Join(change.Tags, ", "))).
				Affirmative("Overwrite").
				Negative("Skip").
				Value(&overwrite),
		),
	).
		WithTheme(NewHuhTheme()).
		WithAccessible(p.Accessible)

	if p.In != nil {
		form = form.WithInput(p.In)
	}
	if p.Out != nil {
		form = form.WithOutput(p.Out)
	}

	if err := form.Run(); err != nil {
		return false, err
	}
	return overwrite, nil
}

var _ pipeline.ConfirmFunc = OverwritePrompter{}.Confirm
