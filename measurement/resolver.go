package measurement

import (
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
)

// SeriesResolver turns the series IDs stored in a serialized measurement
// back into series.
type SeriesResolver interface {
	SeriesByID(ids ...int) ([]*series.ValueSeries, error)
}

// MemoryBackend keeps series in memory and hands out IDs for them.
type MemoryBackend struct {
	byID map[int]*series.ValueSeries
	next int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		byID: make(map[int]*series.ValueSeries),
		next: 1,
	}
}

// Save stores the series, assigning an ID to each series that has none.
func (b *MemoryBackend) Save(vs ...*series.ValueSeries) {
	for _, v := range vs {
		if v.ID == 0 {
			v.ID = b.next
		}
		if v.ID >= b.next {
			b.next = v.ID + 1
		}
		b.byID[v.ID] = v
	}
}

func (b *MemoryBackend) SeriesByID(ids ...int) ([]*series.ValueSeries, error) {
	out := make([]*series.ValueSeries, 0, len(ids))
	for _, id := range ids {
		v, exists := b.byID[id]
		if !exists {
			return nil, errors.Wrapf(ErrSeriesNotFound, "id %d", id)
		}
		out = append(out, v)
	}

	return out, nil
}
