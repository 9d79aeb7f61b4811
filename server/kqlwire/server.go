package kqlwire

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Handler answers one query. A returned error is sent back as the
// response's Error text.
type Handler interface {
	HandleQuery(ctx context.Context, req *QueryRequest) (*QueryResponse, error)
}

type HandlerFunc func(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

func (f HandlerFunc) HandleQuery(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	return f(ctx, req)
}

// Serve accepts connections on ln until ctx is done. It closes ln and
// every open connection, and waits for their handlers before returning.
func Serve(ctx context.Context, ln net.Listener, h Handler) error {
	defer func() { _ = ln.Close() }()

	slog.Info("kqlwire: listening", slog.String("addr", ln.Addr().String()))

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("kqlwire: accept", slog.Any("err", err))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConn(ctx, conn, h)
		}()
	}
}

func handleConn(ctx context.Context, conn net.Conn, h Handler) {
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// No global deadline; clients set their own per request.
	_ = conn.SetDeadline(time.Time{})

	for {
		var req QueryRequest
		if err := ReadFrame(conn, &req); err != nil {
			// Client closed or bad frame.
			return
		}

		resp, err := h.HandleQuery(ctx, &req)
		if err != nil {
			resp = &QueryResponse{Error: err.Error()}
		}
		if resp == nil {
			resp = &QueryResponse{}
		}
		resp.ID = req.ID

		if err := WriteFrame(conn, resp); err != nil {
			slog.Debug("kqlwire: write response", slog.String("id", req.ID), slog.Any("err", err))
			return
		}
	}
}
