package master

import (
	"errors"
	"net"
	"net/http"
)

// httpServer adapts http.Server to the errgroup.Go(func() error) shape:
// Serve on a listener closed by the caller returns an error wrapping
// net.ErrClosed (http.ErrServerClosed after Shutdown or Close); both are
// the group's shutdown signal via listener closure, not a reportable
// failure, so serve maps them to nil.
type httpServer struct {
	addr    string
	handler http.Handler
}

func (h *httpServer) serve(ln net.Listener) error {
	srv := &http.Server{Addr: h.addr, Handler: h.handler}
	err := srv.Serve(ln)
	if err == http.ErrServerClosed || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
