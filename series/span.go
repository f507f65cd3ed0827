package series

import (
	"fmt"

	"github.com/pkg/errors"
)

// Span is a (start, end) time window in seconds. The zero Span means "no
// span" wherever a span is optional.
type Span [2]float64

func (s Span) IsZero() bool {
	return s[0] == 0 && s[1] == 0
}

func (s Span) Start() float64 { return s[0] }
func (s Span) End() float64   { return s[1] }

func (s Span) Duration() float64 {
	return s[1] - s[0]
}

func (s Span) Contains(t float64) bool {
	return t >= s[0] && t <= s[1]
}

func (s Span) Shift(dt float64) Span {
	return Span{s[0] + dt, s[1] + dt}
}

func (s Span) Validate() error {
	if !(s[1] > s[0]) {
		return errors.Wrapf(ErrEmptySpan, "span %s ends before it starts", s)
	}

	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("[%g, %g]", s[0], s[1])
}
