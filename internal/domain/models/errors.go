package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by ingestion and the forecasting pipeline. Callers match
// them with errors.Is; the concrete error usually wraps one of these with context.
var (
	ErrMissingColumn        = errors.New("missing required column")
	ErrEmptyHouseData       = errors.New("no data for house")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
	ErrInsufficientData     = errors.New("insufficient hourly data")
	ErrNoValidConsumption   = errors.New("no valid consumption values")
	ErrInvalidParameter     = errors.New("invalid parameter")
)

// ErrUnknownLine reports a genetic line without a reference table.
var ErrUnknownLine = fmt.Errorf("%w: unknown genetic line", ErrInvalidParameter)

// ErrInvalidTable reports a malformed reference consumption table.
var ErrInvalidTable = fmt.Errorf("%w: invalid consumption table", ErrInvalidParameter)
