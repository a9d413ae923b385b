package filter

import (
	"context"
	"time"

	errx "github.com/smart-album/server/internal/core/error"

	"github.com/smart-album/server/internal/album/query"
)

// ScanRecord is the slice of photo metadata the builder needs to resolve a
// year-less month-day: the identifier and when the photo was taken.
type ScanRecord struct {
	ID      string
	TakenAt int64
}

// MetadataScanner is the store capability used to resolve dates the store's
// native range filter cannot express.
type MetadataScanner interface {
	ScanDates(ctx context.Context) ([]ScanRecord, error)
}

// Builder turns a date expression and an optional tag list into a Spec.
type Builder struct {
	scanner MetadataScanner
	loc     *time.Location
}

func NewBuilder(scanner MetadataScanner, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{scanner: scanner, loc: loc}
}

// Build composes the filter spec. A year-bearing date becomes a
// [start of day, start of next day) range; a year-less month-day is resolved
// by scanning stored capture dates and collecting matching ids, because the
// store's range filter requires a fully qualified date. Tags combine with
// either resolution by logical AND.
func (b *Builder) Build(ctx context.Context, expr query.DateExpression, tags []string) (Spec, error) {
	spec := Spec{}
	if len(tags) > 0 {
		spec.Tags = tags
	}

	switch expr.Kind {
	case query.DateKindNone:
		return spec, nil

	case query.DateKindDate:
		start := time.Date(expr.Year, time.Month(expr.Month), expr.Day, 0, 0, 0, 0, b.loc)
		spec.DateRange = &DateRange{
			Start: start.Unix(),
			End:   start.AddDate(0, 0, 1).Unix(),
		}
		return spec, nil

	case query.DateKindMonthDay:
		records, err := b.scanner.ScanDates(ctx)
		if err != nil {
			return Spec{}, errx.WrapStore(err)
		}
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			taken := time.Unix(rec.TakenAt, 0).In(b.loc)
			if int(taken.Month()) == expr.Month && taken.Day() == expr.Day {
				ids = append(ids, rec.ID)
			}
		}
		spec.IDs = ids
		spec.IDSet = true
		return spec, nil
	}

	return spec, nil
}
