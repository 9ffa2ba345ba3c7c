package freeride

import (
	"errors"
	"fmt"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

var (
	ErrEmptySeries     = errors.New("empty series")
	ErrMalformedSeries = errors.New("malformed series")
	ErrNoResorts       = errors.New("no resorts to rank")
)

// EmptySeriesError is returned when a mean is requested over zero samples.
type EmptySeriesError struct {
	Resort string
	Window models.Window
	Field  string
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("%s: %s mean is undefined over zero samples%s",
		resortName(e.Resort), e.Field, windowSuffix(e.Window))
}

func (e *EmptySeriesError) Is(target error) bool {
	return target == ErrEmptySeries
}

// MalformedSeriesError reports a series whose parallel sample slices
// disagree in length or contain values outside their physical range.
type MalformedSeriesError struct {
	Resort string
	Window models.Window
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("%s: malformed series: %s%s",
		resortName(e.Resort), e.Reason, windowSuffix(e.Window))
}

func (e *MalformedSeriesError) Is(target error) bool {
	return target == ErrMalformedSeries
}

type NoResortsError struct{}

func (e *NoResortsError) Error() string {
	return ErrNoResorts.Error()
}

func (e *NoResortsError) Is(target error) bool {
	return target == ErrNoResorts
}

func resortName(name string) string {
	if name == "" {
		return "unnamed resort"
	}
	return name
}

func windowSuffix(w models.Window) string {
	if w.Start.IsZero() && w.End.IsZero() {
		return ""
	}
	return " (" + w.String() + ")"
}
