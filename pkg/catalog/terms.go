package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/gnames/gnfmt"
)

// DefaultTermsBatch is the number of terms written in one batch.
const DefaultTermsBatch = 1_000

// ImportTerms creates or replaces terms of the term catalogue. Terms
// are validated first, nothing is written if any of them is invalid.
// A term repeated in the input keeps its last version.
//
// Terms are written in batches of batchSize, the progress function,
// if given, is called with the number of terms of each written batch.
// It returns the number of stored terms.
func (c *Catalog) ImportTerms(
	ctx context.Context,
	terms []record.Term,
	batchSize int,
	progress func(int),
) (int, error) {
	if batchSize < 1 {
		batchSize = DefaultTermsBatch
	}

	idx := make(map[string]int, len(terms))
	uniq := make([]record.Term, 0, len(terms))
	for _, t := range terms {
		if err := t.Validate(); err != nil {
			return 0, InvalidRecordError("term", err)
		}
		if i, ok := idx[t.GID]; ok {
			uniq[i] = t
			continue
		}
		idx[t.GID] = len(uniq)
		uniq = append(uniq, t)
	}

	start := time.Now()
	for i := 0; i < len(uniq); i += batchSize {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		batch := uniq[i:min(i+batchSize, len(uniq))]
		if err := c.store.PutTerms(ctx, batch); err != nil {
			return i, err
		}
		if progress != nil {
			progress(len(batch))
		}
	}

	slog.Info("Terms imported",
		"terms", humanize.Comma(int64(len(uniq))),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return len(uniq), nil
}
