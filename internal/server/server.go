// Package server hosts the WebSocket transport (spec §5): one chi
// route upgrades to github.com/coder/websocket, then hands the
// connection to a read/write loop pair that decodes frames, dispatches
// them through internal/handlers, and drains the per-session outbound
// queue. Grounded on ashureev-shsh-labs/internal/terminal/websocket.go's
// ServeHTTP/wsWriter shape, adapted from a JSON terminal protocol to
// this package's msgpack request/response envelopes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/extrachat/server/internal/handlers"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

const shutdownGrace = 10 * time.Second

// Server owns the listen address and the shared collaborators every
// connection's dispatch loop needs.
type Server struct {
	addr     string
	handlers *handlers.Handlers
	registry *registry.Registry
	log      *slog.Logger

	ctx context.Context
}

// New builds a Server. ctx is not wired until Run starts, since a
// connection accepted before Run is not possible.
func New(addr string, h *handlers.Handlers, reg *registry.Registry, log *slog.Logger) *Server {
	return &Server{addr: addr, handlers: h, registry: reg, log: log}
}

func (srv *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", srv.handleWS)
	return r
}

// Run listens until ctx is cancelled, then drains in-flight connections
// for up to shutdownGrace before giving up. Matches the graceful
// http.Server.Shutdown pattern used across the pack's HTTP entrypoints.
func (srv *Server) Run(ctx context.Context) error {
	srv.ctx = ctx

	httpSrv := &http.Server{
		Addr:              srv.addr,
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving http: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		srv.log.Error("accepting websocket", "error", err, "remote", r.RemoteAddr)
		return
	}

	srv.serveConn(conn, r.RemoteAddr)
}

// serveConn runs a connection's read and write loops until either one
// exits, then tears the whole connection down. Either loop's exit
// cancels connCtx so the other one's blocking call (Read, or the
// Shutdown/Outbound select) unwinds promptly.
func (srv *Server) serveConn(conn *websocket.Conn, remote string) {
	sess := session.New()
	connCtx, cancel := context.WithCancel(srv.ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		srv.writeLoop(connCtx, conn, sess)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		srv.readLoop(connCtx, conn, sess, remote)
	}()
	wg.Wait()

	if identityID, ok := sess.Identity(); ok {
		name, world := sess.NameWorld()
		srv.registry.Remove(identityID, name, world, sess)
	}
	sess.Close()
	conn.Close(websocket.StatusNormalClosure, "connection closed")
}

func (srv *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session, remote string) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		number, payload, err := protocol.DecodeRequest(data)
		if err != nil {
			srv.log.Warn("decoding frame", "error", err, "remote", remote)
			return
		}

		resp, err := srv.handlers.Dispatch(ctx, sess, number, payload)
		closeAfter := false
		if err != nil {
			perr, ok := err.(*protocol.Error)
			if !ok {
				srv.log.Error("handler error", "error", err, "remote", remote)
				perr = protocol.NewError("internal error")
			}
			resp = perr
			if _, isVersion := payload.(*protocol.VersionRequest); isVersion {
				closeAfter = true
			}
		}

		if resp != nil {
			frame, err := protocol.EncodeResponse(number, resp)
			if err != nil {
				srv.log.Error("encoding response", "error", err, "remote", remote)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
				return
			}
		}

		if closeAfter {
			return
		}
	}
}

// writeLoop drains sess.Outbound, the destination of every fan-out
// message other handlers enqueue (spec §5). Writes use a background
// context per the wsWriter convention this is grounded on: the
// websocket library tracks its own connection state, and ctx here only
// gates when this loop should stop picking up new frames.
func (srv *Server) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.Shutdown:
			return
		case frame := <-sess.Outbound:
			if err := conn.Write(context.Background(), websocket.MessageBinary, frame); err != nil {
				return
			}
		}
	}
}
