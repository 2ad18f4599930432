package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	revealUseCase "github.com/xambitlan/disclosure/internal/reveal/usecase"
)

// RunExpireRevealRequests moves up to limit overdue PENDING and APPROVED
// requests to EXPIRED. Reads expire requests lazily as well; this sweep makes
// sure their notifications go out even when nobody looks at them.
func RunExpireRevealRequests(
	ctx context.Context,
	revealUseCase revealUseCase.RevealUseCase,
	logger *slog.Logger,
	writer io.Writer,
	limit int,
	dryRun bool,
	format string,
) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	logger.Info("expiring stale reveal requests",
		slog.Int("limit", limit),
		slog.Bool("dry_run", dryRun),
	)

	count, err := revealUseCase.ExpireStale(ctx, limit, dryRun)
	if err != nil {
		return fmt.Errorf("failed to expire reveal requests: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count, "dry_run": dryRun}); err != nil {
			return err
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would expire %d reveal request(s)\n", count)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully expired %d reveal request(s)\n", count)
	}

	logger.Info("expiry completed", slog.Int("count", count), slog.Bool("dry_run", dryRun))
	return nil
}
