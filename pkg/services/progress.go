package services

import "time"

// State is the position of a novel in the archiving state machine
type State string

const (
	StatePending         State = "pending"
	StateFetchingTOC     State = "fetching_toc"
	StateFetchingChapter State = "fetching_chapter"
	StateTranslating     State = "translating"
	StateWriting         State = "writing"
	StateAdvancingLedger State = "advancing_ledger"
	StatePaused          State = "paused"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Progress represents one step of a novel being archived
type Progress struct {
	NovelURL     string
	NovelTitle   string
	Chapter      int
	Total        int
	State        State
	FailedChunks int
	Error        error
}

// NovelResult is the outcome of archiving one novel
type NovelResult struct {
	URL          string
	Title        string
	Source       string
	Total        int
	StartChapter int // ledger value before the run
	LastChapter  int // ledger value after the run
	Written      int
	Placeholders int
	FailedChunks int
	State        State
	Err          error
}

func (r NovelResult) Failed() bool {
	return r.State == StateFailed
}

// RunResult collects the per-novel results of one run
type RunResult struct {
	Novels     []NovelResult
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *RunResult) Failed() int {
	n := 0
	for _, nr := range r.Novels {
		if nr.Failed() {
			n++
		}
	}
	return n
}

func (r *RunResult) Written() int {
	n := 0
	for _, nr := range r.Novels {
		n += nr.Written
	}
	return n
}
