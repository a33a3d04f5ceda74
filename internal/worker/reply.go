package worker

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"distmaster/internal/logsink"
)

// readReply reads one full reply from r: a status line starting with
// '=' or '?' followed by a decimal id, any number of continuation lines,
// and a terminating blank line. It returns the parsed id and the raw
// bytes of the entire reply (status line plus every continuation line,
// in the order received) — the full work product a slave hands back,
// not just its status line.
func readReply(r *bufio.Reader, sink *logsink.Sink, addr string) (id int, body []byte, err error) {
	first := true
	var buf []byte
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return 0, nil, io.EOF
			}
			return 0, nil, err
		}
		if line == "\n" || line == "\r\n" {
			break
		}
		if sink != nil && (first || sink.Verbose(3)) {
			sink.Log("<< ", addr, strings.TrimRight(line, "\r\n"))
		}
		if first {
			first = false
			parsedID, ok := parseStatusID(line)
			if !ok {
				return 0, nil, fmt.Errorf("worker: malformed reply line %q", line)
			}
			id = parsedID
		}
		buf = append(buf, line...)
	}
	return id, buf, nil
}

// parseStatusID extracts the decimal id from a GTP-style status line of
// the form "=123 ..." or "?123 ...". Returns ok=false if line doesn't
// start with one of those markers followed by at least one digit.
func parseStatusID(line string) (int, bool) {
	if len(line) < 2 {
		return 0, false
	}
	if line[0] != '=' && line[0] != '?' {
		return 0, false
	}
	i := 1
	start := i
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}
	n := 0
	for _, c := range line[start:i] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// statusOK reports whether a status line indicates acceptance ("=...")
// rather than rejection ("?...").
func statusOK(status []byte) bool {
	return len(status) > 0 && status[0] == '='
}
