package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// scope holds the per-goroutine tracking state: which owner adopts new
// primitives, which listener subscribes to reads, the batch nesting
// depth, and the runtime context for UseCtx.
type scope struct {
	owner    *Owner
	listener Listener
	ctx      any

	batchDepth int
	pending    []Listener
}

// scopes maps goroutine ID to its tracking scope. Entries are created
// on demand and removed when a scope empties out, so short-lived
// goroutines do not accumulate.
var scopes sync.Map

// goroutineID parses the numeric ID out of the runtime.Stack header
// ("goroutine 18 [running]: ...").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := buf[:n]
	s = bytes.TrimPrefix(s, []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseUint(string(s), 10, 64)
	return id
}

func currentScope() *scope {
	gid := goroutineID()
	if v, ok := scopes.Load(gid); ok {
		return v.(*scope)
	}
	sc := &scope{}
	actual, _ := scopes.LoadOrStore(gid, sc)
	return actual.(*scope)
}

// release drops the scope from the map once nothing references it.
func (sc *scope) release() {
	if sc.owner == nil && sc.listener == nil && sc.ctx == nil &&
		sc.batchDepth == 0 && len(sc.pending) == 0 {
		scopes.Delete(goroutineID())
	}
}

func getCurrentOwner() *Owner {
	return currentScope().owner
}

func setCurrentOwner(o *Owner) *Owner {
	sc := currentScope()
	old := sc.owner
	sc.owner = o
	sc.release()
	return old
}

func getCurrentListener() Listener {
	return currentScope().listener
}

func setCurrentListener(l Listener) Listener {
	sc := currentScope()
	old := sc.listener
	sc.listener = l
	sc.release()
	return old
}

func getCurrentCtx() any {
	return currentScope().ctx
}

func setCurrentCtx(c any) any {
	sc := currentScope()
	old := sc.ctx
	sc.ctx = c
	sc.release()
	return old
}

// WithOwner runs fn with o as the current owner, restoring the previous
// owner afterwards. The session runtime wraps component construction
// and renders in this.
func WithOwner(o *Owner, fn func()) {
	old := setCurrentOwner(o)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with l subscribed to every signal read inside.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// WithCtx runs fn with c available through UseCtx. The value is typed
// any here to keep this package free of the server runtime; UseCtx
// narrows it back to Ctx.
func WithCtx(c any, fn func()) {
	old := setCurrentCtx(c)
	defer setCurrentCtx(old)
	fn()
}

func batchDepth() int {
	return currentScope().batchDepth
}

func enterBatch() {
	currentScope().batchDepth++
}

// leaveBatch reports whether the outermost batch just closed.
func leaveBatch() bool {
	sc := currentScope()
	sc.batchDepth--
	done := sc.batchDepth == 0
	if done {
		sc.release()
	}
	return done
}

func queuePending(l Listener) {
	sc := currentScope()
	sc.pending = append(sc.pending, l)
}

func drainPending() []Listener {
	sc := currentScope()
	pending := sc.pending
	sc.pending = nil
	sc.release()
	return pending
}
