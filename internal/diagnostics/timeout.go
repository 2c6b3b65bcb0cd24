// Package diagnostics holds connectivity checks that are run from the CLI
// rather than as part of the table pipeline.
package diagnostics

import (
	"context"
	"fmt"
	"time"

	apperrors "sheetcli/internal/errors"
)

// RunWithTimeout runs fn in its own goroutine and waits up to d for it to
// finish. On timeout it returns an AUTOMATION error and stops waiting; fn's
// context is cancelled but the goroutine is left to finish on its own.
// A non-positive d waits for as long as ctx allows.
func RunWithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	runCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(runCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.NewAutomationError(fmt.Sprintf("operation timed out after %s", d), runCtx.Err()).
			WithContext("timeout", d.String())
	}
}
