package reactive

// Batch groups signal writes into one notification phase. Listeners
// touched inside the batch are collected, deduplicated by ID, and
// marked dirty once when the outermost batch closes. Use it when a
// handler updates several related signals and a single re-render is
// wanted.
func Batch(fn func()) {
	enterBatch()
	defer func() {
		if leaveBatch() {
			flushPending()
		}
	}()
	fn()
}

func flushPending() {
	pending := drainPending()
	if len(pending) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(pending))
	for _, l := range pending {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}

// Untracked runs fn with dependency tracking suspended, so signal
// reads inside do not subscribe the current listener. For a single
// read, Peek is clearer.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
