package worker

import (
	"bufio"
	"fmt"
	"net"
	"strings"
)

// handshakeBanner is the literal identity line every slave must present.
// It is not configurable: identity here is a name banner only, not an
// authentication mechanism.
const handshakeBanner = "= Pachi"

// handshake writes the literal "name" challenge and validates the reply
// banner. On success it returns a *bufio.Reader positioned to read the
// first reply line, for reuse across the whole connection's lifetime. The
// literal line is part of the wire contract, not a configurable identity
// exchange: it asks the slave to self-identify, it does not announce the
// master's own name.
func handshake(conn net.Conn) (*bufio.Reader, error) {
	if _, err := fmt.Fprint(conn, "name\n"); err != nil {
		return nil, err
	}

	r := bufio.NewReader(conn)
	banner, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if len(banner) < len(handshakeBanner) || !strings.EqualFold(banner[:len(handshakeBanner)], handshakeBanner) {
		return nil, fmt.Errorf("worker: bad handshake banner %q", strings.TrimRight(banner, "\r\n"))
	}

	terminator, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if strings.TrimRight(terminator, "\r\n") != "" {
		return nil, fmt.Errorf("worker: expected empty handshake terminator, got %q", terminator)
	}

	return r, nil
}
