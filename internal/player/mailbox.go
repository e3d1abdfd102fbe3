package player

import "sync"

// Verdict is the dealer's answer to a claim.
type Verdict int32

const (
	// VerdictNone means the claim was void: the markers changed before the
	// dealer got to it. It carries no reward and no penalty.
	VerdictNone Verdict = iota
	VerdictLegal
	VerdictIllegal
)

func (v Verdict) String() string {
	switch v {
	case VerdictLegal:
		return "legal"
	case VerdictIllegal:
		return "illegal"
	default:
		return "none"
	}
}

// mailbox is a single-slot verdict cell. The dealer is the only writer and
// the owning player the only reader. Checking and waiting happen under the
// same lock, so a verdict delivered before the player starts waiting is
// still seen and a wake-up cannot be lost.
type mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	verdict Verdict
	ready   bool
	closed  bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *mailbox) deliver(v Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdict = v
	m.ready = true
	m.cond.Signal()
}

// await blocks until a verdict arrives or the mailbox is closed. It consumes
// the verdict; ok is false only when closed with nothing delivered.
func (m *mailbox) await() (v Verdict, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.ready && !m.closed {
		m.cond.Wait()
	}
	if !m.ready {
		return VerdictNone, false
	}
	v = m.verdict
	m.verdict = VerdictNone
	m.ready = false
	return v, true
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}
