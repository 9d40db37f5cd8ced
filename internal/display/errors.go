package display

import "codeberg.org/mutker/envstation/internal/errors"

const (
	ErrNoData     = errors.ErrorCode("display_no_data")
	ErrPlotFailed = errors.ErrorCode("display_plot_failed")
)
