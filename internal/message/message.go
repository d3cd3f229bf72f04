package message

type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

type CleanupCompleteMsg struct{}

// RerunMsg asks for the job to be started again, e.g. after files changed
type RerunMsg struct {
	Paths []string
}
