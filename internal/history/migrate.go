package history

import (
	"context"
	"fmt"
	"slices"
)

// Copy replays up to limit of src's most recent records into dst, oldest
// first, so dst keeps the same newest-first order. It returns how many
// records were written. With dryRun it only counts.
func Copy(ctx context.Context, dst, src Store, limit int, dryRun bool) (int, error) {
	records, err := src.Recent(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if dryRun {
		return len(records), nil
	}

	slices.Reverse(records)
	for i, rec := range records {
		if err := dst.Add(ctx, rec); err != nil {
			return i, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}
	return len(records), nil
}
