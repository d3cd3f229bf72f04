package constants

import (
	"time"
)

// *********************************************************************************************************************
// THESE ARE KEY TO RESPONSIVENESS WHEN A JOB PRINTS A LOT OF OUTPUT (EXACT VALUES DETERMINED BY FEEL)

// CollectOutputDuration controls the amount of time the output of a running job is collected for before being
// returned to the main Model via a tea.Msg
var CollectOutputDuration = 150 * time.Millisecond

// DefaultDebounce controls how long file changes have to settle before the job is run again
var DefaultDebounce = 100 * time.Millisecond

// *********************************************************************************************************************

// ToastDuration controls how long a toast message is shown
const ToastDuration = 5 * time.Second

// HelpRowsPerColumn controls the number of key bindings per column in the help view
const HelpRowsPerColumn = 8

