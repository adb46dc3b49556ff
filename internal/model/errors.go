package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrMisaligned      = errors.New("period grids do not align")
	ErrInvalidQuantity = errors.New("invalid bid quantity")
	ErrInvalidLag      = errors.New("invalid lag")
)

// RunError tags a failure with the workflow step that raised it.
type RunError struct {
	Step        string
	Unit        string
	TradingDate TradingDay
	Lag         Lag
	Err         error
}

func (e *RunError) Error() string {
	where := e.Step
	if e.Unit != "" {
		where += " " + e.Unit
	}
	return fmt.Sprintf("%s (trading date %s, lag %s): %v", where, e.TradingDate, e.Lag, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// WrapRun returns nil for a nil err.
func WrapRun(step, unit string, day TradingDay, lag Lag, err error) error {
	if err == nil {
		return nil
	}
	var re *RunError
	if errors.As(err, &re) {
		return err
	}
	return &RunError{Step: step, Unit: unit, TradingDate: day, Lag: lag, Err: err}
}
