package transfer

const (
	OpUpload   = "upload"
	OpDownload = "download"
)

// Event is emitted after every chunk and once when a transfer starts.
type Event struct {
	Op    string
	Name  string
	Done  uint64
	Total uint64
}

type Callback func(Event)

func (e *Engine) report(op, name string, done, total uint64) {
	logger.Tracef("%s %s: %d/%d", op, name, done, total)
	if e.conf.Progress != nil {
		e.conf.Progress(Event{Op: op, Name: name, Done: done, Total: total})
	}
}
