package pipeline

import (
	"fmt"

	"github.com/jakoblorz/go-airules/internal/rules"
)

// Status is what happened to a planned change.
type Status string

const (
	StatusWritten   Status = "written"
	StatusPlanned   Status = "planned"
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
)

// Outcome pairs a change with its status.
type Outcome struct {
	Change rules.Change
	Status Status
}

// ConfirmFunc asks whether an existing file may be overwritten.
type ConfirmFunc func(change rules.Change) (bool, error)

// WriteOptions controls how changes reach the disk.
type WriteOptions struct {
	// DryRun reports every change as planned without writing.
	DryRun bool

	// Confirm is consulted before overwriting an existing file. Nil
	// overwrites without asking.
	Confirm ConfirmFunc
}

// Write applies changes in order. Unchanged files are never rewritten and
// never trigger a confirmation.
func (p *Pipeline) Write(changes []rules.Change, opts WriteOptions) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(changes))

	for _, change := range changes {
		logger := p.logger.With("tool", change.Tool, "path", change.RelPath)

		switch {
		case change.Action == rules.ActionUnchanged:
			logger.Debug("rules unchanged")
			outcomes = append(outcomes, Outcome{Change: change, Status: StatusUnchanged})
			continue
		case opts.DryRun:
			outcomes = append(outcomes, Outcome{Change: change, Status: StatusPlanned})
			continue
		}

		if change.Exists() && opts.Confirm != nil {
			ok, err := opts.Confirm(change)
			if err != nil {
				return outcomes, fmt.Errorf("failed to confirm overwrite of %s: %w", change.RelPath, err)
			}
			if !ok {
				logger.Info("skipped existing rules file")
				outcomes = append(outcomes, Outcome{Change: change, Status: StatusSkipped})
				continue
			}
		}

		if err := p.writer.Apply(change); err != nil {
			return outcomes, err
		}
		logger.Info("wrote rules file", "action", change.Action, "bytes", len(change.Content))
		outcomes = append(outcomes, Outcome{Change: change, Status: StatusWritten})
	}

	return outcomes, nil
}

// Summary counts outcomes by status.
func Summary(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
