package tinybasic

import (
	"context"
	"fmt"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// cmdEnd stops the run after the current line.
func (b *TinyBASIC) cmdEnd() (stepResult, error) {
	return stepResult{ended: true}, nil
}

// cmdRun executes the stored program. Variables are kept from earlier runs
// and immediate statements.
func (b *TinyBASIC) cmdRun(ctx context.Context) error {
	if b.program.Len() == 0 {
		logger.Debug(logger.AreaRun, "session %s: RUN with empty program", b.sessionID)
		return nil
	}
	return b.run(ctx)
}

// cmdList prints every stored line as it was typed, in line number order.
func (b *TinyBASIC) cmdList() error {
	for _, entry := range b.program.Lines() {
		if _, err := fmt.Fprintln(b.out, entry.Text); err != nil {
			return err
		}
	}
	return nil
}
