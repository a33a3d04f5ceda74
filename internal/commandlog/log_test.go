package commandlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"distmaster/internal/gtpid"
)

type fixedEntropy struct{}

func (fixedEntropy) Intn(int) int { return 0 }

type testClassifier struct{}

func (testClassifier) IsReset(word string) bool     { return word == "boardsize" }
func (testClassifier) IsGameStart(word string) bool { return word == "clear_board" }

func newTestLog() *Log {
	return New(testClassifier{}, fixedEntropy{}, 4, nil)
}

func TestNewCommandStartsRound(t *testing.T) {
	l := newTestLog()
	l.Lock()
	defer l.Unlock()

	l.NewCommand(0, "clear_board", "")
	require.True(t, l.Started())
	require.True(t, gtpid.ReplyRequired(l.CurrentID()))
	require.Equal(t, 0, l.CurrentOffset())

	body := l.CurrentCommandBytes()
	require.True(t, strings.HasSuffix(string(body), "clear_board\n"))
}

func TestNewCommandDemotesPrevious(t *testing.T) {
	l := newTestLog()
	l.Lock()
	defer l.Unlock()

	l.NewCommand(0, "clear_board", "")
	firstID := l.CurrentID()
	firstIDWidth := l.curIDWide
	firstOffset := l.CurrentOffset()

	l.NewCommand(1, "play", "b d4")
	require.NotEqual(t, firstID, l.CurrentID())
	require.Greater(t, l.CurrentOffset(), firstOffset)

	// The first command's id was rewritten in place to its demoted form,
	// at the same width, without disturbing the rest of the line.
	history := l.HistoryBytesFrom(firstOffset)
	demotedID := gtpid.PreventReply(firstID)
	wantPrefix := gtpid.FormatID(demotedID, firstIDWidth)
	require.True(t, strings.HasPrefix(string(history), wantPrefix))
	require.True(t, strings.Contains(string(history), "clear_board\n"))
}

func TestProcessReplyTracksQuorum(t *testing.T) {
	l := newTestLog()
	l.Lock()
	l.IncActiveSlaves()
	l.IncActiveSlaves()
	l.NewCommand(0, "genmoves", "")
	id := l.CurrentID()
	l.Unlock()

	l.Lock()
	ws1 := NewWorkerReplyState()
	resend := l.ProcessReply("slave-1", ws1, id, []byte("="+itoa(id)+" D4\n"))
	require.False(t, resend)
	require.Equal(t, 1, l.ReplyCount())

	ws2 := NewWorkerReplyState()
	resend = l.ProcessReply("slave-2", ws2, id, []byte("="+itoa(id)+" D4\n"))
	require.False(t, resend)
	require.Equal(t, 2, l.ReplyCount())
	l.Unlock()
}

func TestProcessReplyMismatchRequestsResend(t *testing.T) {
	l := newTestLog()
	l.Lock()
	l.NewCommand(0, "genmoves", "")
	l.Unlock()

	l.Lock()
	ws := NewWorkerReplyState()
	resend := l.ProcessReply("slave-1", ws, 9999999, []byte("=9999999 D4\n"))
	require.True(t, resend)
	require.Equal(t, 0, l.ReplyCount())
	l.Unlock()
}

func TestProcessReplyErrorStatusRequestsResend(t *testing.T) {
	l := newTestLog()
	l.Lock()
	l.NewCommand(0, "genmoves", "")
	id := l.CurrentID()
	l.Unlock()

	l.Lock()
	ws := NewWorkerReplyState()
	resend := l.ProcessReply("slave-1", ws, id, []byte("?"+itoa(id)+" unacceptable move\n"))
	require.True(t, resend)
	require.Equal(t, -1, ws.LastReplyID())
	l.Unlock()
}

func TestNextCommandOffsetResyncsMidRound(t *testing.T) {
	l := newTestLog()
	l.Lock()
	l.NewCommand(0, "clear_board", "")
	l.NewCommand(1, "genmoves", "")
	idAtMove1 := l.CurrentID()
	l.NewCommand(2, "genmoves", "")
	offsetAt2 := l.CurrentOffset()

	// A slave that last acknowledged move 1's id must resume exactly
	// where the command that followed it (move 2's) starts.
	require.Equal(t, offsetAt2, l.NextCommandOffset(idAtMove1))

	// A slave that never replied (sentinel -1) always resumes from the
	// very start of the buffer.
	require.Equal(t, 0, l.NextCommandOffset(-1))
	l.Unlock()
}
