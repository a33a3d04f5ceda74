// Package driver exposes the application-facing half of the distributed
// protocol core: publishing commands and collecting replies. It wraps
// commandlog.Log with the deadline-bounded GetReplies call the C original
// built on pthread_cond_timedwait, since sync.Cond has no timed wait of
// its own.
package driver

import (
	"fmt"
	"time"

	"distmaster/internal/commandlog"
	"distmaster/internal/logsink"
)

// Driver is the entry point an embedding application uses to drive a
// round: publish a command, then collect replies up to a deadline.
type Driver struct {
	log  *commandlog.Log
	sink *logsink.Sink
}

// New wraps log for application use. sink, if non-nil, receives a
// diagnostic line whenever GetReplies returns early at its deadline with
// a partial quorum, mirroring the original's logline(NULL, "? ", ...)
// call on that path.
func New(log *commandlog.Log, sink *logsink.Sink) *Driver {
	return &Driver{log: log, sink: sink}
}

// Lock acquires the underlying log's lock. Callers that need to publish
// several related commands atomically hold it across multiple calls.
func (d *Driver) Lock() { d.log.Lock() }

// Unlock releases the underlying log's lock.
func (d *Driver) Unlock() { d.log.Unlock() }

// NewCmd publishes a command that starts a fresh id generation, demoting
// whatever command was previously live. word and args form the command's
// textual body; move is the move counter the id scheme encodes. Must be
// called with the lock held.
func (d *Driver) NewCmd(move int, word, args string) {
	d.log.NewCommand(move, word, args)
}

// UpdateCmd republishes the live command's payload. When newID is false
// this is an in-place content refresh under the same id (used while a
// command is still pending and its arguments change); when true it mints
// a fresh id without demoting anything first, for a caller that manages
// demotion itself. Must be called with the lock held.
func (d *Driver) UpdateCmd(move int, word, args string, newID bool) {
	d.log.UpdateCommand(move, word, args, newID)
}

// Replies returns the replies collected so far for the live command.
func (d *Driver) Replies() []commandlog.Reply {
	return d.log.Replies()
}

// GetReplies blocks until either every active slave has replied to the
// live command or deadline passes, returning whatever replies are in
// hand. It must be called with the lock held and returns with the lock
// still held — mirroring get_replies, which never releases slave_lock
// across the whole wait.
//
// The wait always blocks at least once before its first predicate check,
// even if the deadline has already passed or replyCount already meets
// quorum: a caller that wants a non-blocking peek should inspect
// d.Replies() directly instead of calling GetReplies with a past
// deadline. This mirrors the original's loop structure, which never
// short-circuits before its first pthread_cond_wait.
func (d *Driver) GetReplies(deadline time.Time) []commandlog.Reply {
	armed := false
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		d.log.WaitOnReply()

		count := d.log.ReplyCount()
		active := d.log.ActiveSlaves()
		if count == 0 {
			continue
		}
		if active == 0 || count >= active {
			return d.log.Replies()
		}
		if !armed {
			armed = true
			wait := time.Until(deadline)
			if wait <= 0 {
				d.logTimeout(count, active)
				return d.log.Replies()
			}
			timer = time.AfterFunc(wait, d.log.BroadcastReply)
			continue
		}
		if !time.Now().Before(deadline) {
			d.logTimeout(count, active)
			return d.log.Replies()
		}
	}
}

// logTimeout emits the diagnostic line the original's get_replies logs
// when it returns at its deadline with fewer replies than active slaves.
func (d *Driver) logTimeout(count, active int) {
	if d.sink == nil {
		return
	}
	d.sink.Log("? ", "", fmt.Sprintf("get_replies timeout: %d/%d replies", count, active))
}
