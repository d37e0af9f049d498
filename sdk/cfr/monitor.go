package cfr

import "time"

// Progress reports the state of an in-flight Solve run. It is delivered
// roughly every SolverConfig.ProgressEvery completed iterations; Iteration
// is the index of the iteration that has just finished, and other workers
// may be running iterations with lower or higher indices at that moment.
type Progress struct {
	Iteration int
	Target    int
	InfoSets  int
	Elapsed   time.Duration
}

// Monitor receives periodic Progress reports during Solve. Implementations
// must return quickly: they are called from whichever worker goroutine
// happens to cross a reporting threshold, and a slow Monitor stalls that
// worker's iterations.
type Monitor func(Progress)
