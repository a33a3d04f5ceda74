package worker

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadReplyParsesIDAndStatus(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("=104 D4\nextra line\n\n"))
	id, status, err := readReply(r, nil, "peer")
	require.NoError(t, err)
	require.Equal(t, 104, id)
	require.True(t, statusOK(status))
}

func TestReadReplyRetainsContinuationLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("=104 header\nrow one\nrow two\n\n"))
	id, body, err := readReply(r, nil, "peer")
	require.NoError(t, err)
	require.Equal(t, 104, id)
	require.Equal(t, "=104 header\nrow one\nrow two\n", string(body))
}

func TestReadReplyRejectedStatus(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("?104 illegal move\n\n"))
	id, status, err := readReply(r, nil, "peer")
	require.NoError(t, err)
	require.Equal(t, 104, id)
	require.False(t, statusOK(status))
}

func TestReadReplyMalformedFirstLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("garbage\n\n"))
	_, _, err := readReply(r, nil, "peer")
	require.Error(t, err)
}

func TestParseStatusID(t *testing.T) {
	id, ok := parseStatusID("=42 rest\n")
	require.True(t, ok)
	require.Equal(t, 42, id)

	_, ok = parseStatusID("no marker\n")
	require.False(t, ok)
}
