// Package worker drives one slave connection: handshake, then an inner
// loop that sends whatever command (live or catch-up history) the slave
// needs next and folds its reply back into the shared log.
package worker

import (
	"bufio"
	"fmt"
	"net"

	"distmaster/internal/commandlog"
	"distmaster/internal/logsink"
)

// Pool accepts slave connections and runs one worker goroutine per
// accepted connection. Each connection starts with fresh per-worker reply
// state; nothing is reused across reconnects, and the number of
// concurrently served slaves is not capped.
type Pool struct {
	log      *commandlog.Log
	listener net.Listener
	sink     *logsink.Sink
}

// NewPool wraps listener, accepting slave connections against log.
func NewPool(log *commandlog.Log, listener net.Listener, sink *logsink.Sink) *Pool {
	return &Pool{log: log, listener: listener, sink: sink}
}

// Serve accepts connections until the listener is closed.
func (p *Pool) Serve() error {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return err
		}
		go p.handle(conn)
	}
}

func (p *Pool) handle(conn net.Conn) {
	defer conn.Close()
	addr := conn.RemoteAddr().String()

	r, err := handshake(conn)
	if err != nil {
		p.sink.Log("? ", addr, fmt.Sprintf("bad slave: %v", err))
		return
	}
	p.sink.Log("", addr, "new slave")

	w := &worker{
		log:  p.log,
		conn: conn,
		r:    r,
		sink: p.sink,
		addr: addr,
		ws:   commandlog.NewWorkerReplyState(),
	}

	p.log.Lock()
	p.log.IncActiveSlaves()
	w.run()
	p.log.DecActiveSlaves()
	p.log.Unlock()

	p.sink.Log("", addr, "lost slave")
}

// worker holds the per-connection state the inner loop threads through
// repeated iterations: the persistent reply buffer reader, the resend
// flag, and this connection's position in the reply-tracking scheme.
type worker struct {
	log  *commandlog.Log
	conn net.Conn
	r    *bufio.Reader
	sink *logsink.Sink
	addr string
	ws   *commandlog.WorkerReplyState

	lastCmdSent uint64
	resend      bool
}

// run executes the inner loop until the connection fails. Must be called
// with the log's lock held; it releases the lock around blocking I/O and
// always returns with the lock held.
func (w *worker) run() {
	w.resend = true
	for {
		offset, willResend := w.nextSendOffset()
		buf := w.log.HistoryBytesFrom(offset)
		w.lastCmdSent = w.log.Counter()

		w.log.Unlock()
		id, body, err := w.sendAndReceive(buf, willResend, offset == 0)

		// statusOK only inspects body's first line, already in hand; do
		// this diagnostic log before reacquiring the log lock so the
		// shared LogSink mutex is never held nested inside it — a slow
		// sink must not stall the command path for every other worker
		// and the driver's GetReplies.
		if err == nil && !statusOK(body) {
			w.sink.Log("? ", w.addr, "reply rejected")
		}

		w.log.Lock()

		if err != nil {
			return
		}
		w.resend = w.log.ProcessReply(w.addr, w.ws, id, body)
		if !w.resend {
			// Defends against a command published between the send above
			// and this reacquire: without this, a genuinely new command
			// that arrived mid-flight could be mistaken for one already
			// accounted for by lastCmdSent's stale value.
			w.lastCmdSent = w.log.Counter()
		}
	}
}

// nextSendOffset decides what to send this iteration: if resend is set,
// the slave needs to catch up from wherever next_command says; otherwise
// it waits for a new command to be published. Must be called with the
// lock held.
func (w *worker) nextSendOffset() (offset int, resend bool) {
	if w.resend {
		return w.log.NextCommandOffset(w.ws.LastReplyID()), true
	}
	w.log.WaitForCommand(w.lastCmdSent)
	return w.log.CurrentOffset(), false
}

// sendAndReceive performs the blocking half of one iteration: write buf,
// then read back exactly one reply. atBase distinguishes a full
// from-scratch resend (starting at the command buffer's base) from a
// partial one that picks up from somewhere mid-buffer — the original's
// distinct "resend all" / "partial resend" diagnostics key off exactly
// this, comparing to_send against the buffer base rather than the live
// command's offset. Must be called without the log's lock held.
func (w *worker) sendAndReceive(buf []byte, resend, atBase bool) (id int, body []byte, err error) {
	if resend {
		tag := "? partial resend"
		if atBase {
			tag = "? resend all"
		}
		w.sink.Log("", w.addr, tag)
	}

	if _, err := w.conn.Write(buf); err != nil {
		return 0, nil, err
	}
	w.sink.Log(">> ", w.addr, fmt.Sprintf("%d bytes", len(buf)))

	return readReply(w.r, w.sink, w.addr)
}
