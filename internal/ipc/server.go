package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"

	ipcmsg "github.com/adrianmross/ga-context/pkg/ipc"
)

// HandlerFunc processes a request and returns a response payload or error.
type HandlerFunc func(req ipcmsg.Request) (interface{}, error)

// Serve starts a Unix socket server and handles requests with the provided handler.
func Serve(socketPath string, handler HandlerFunc, log *logrus.Logger) error {
	// remove stale socket
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	if err := os.Chmod(socketPath, 0o600); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}
	log.WithField("socket", socketPath).Info("daemon listening")
	return ServeListener(ln, handler, log)
}

// ServeListener accepts connections on ln until it is closed.
func ServeListener(ln net.Listener, handler HandlerFunc, log *logrus.Logger) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go handleConn(conn, handler, log)
	}
}

func handleConn(c net.Conn, handler HandlerFunc, log *logrus.Logger) {
	defer c.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))
	for {
		line, err := rw.ReadBytes('\n')
		if err != nil {
			return
		}
		var req ipcmsg.Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeResp(rw, ipcmsg.Response{OK: false, Error: "invalid request"})
			continue
		}
		entry := log.WithFields(logrus.Fields{"method": req.Method, "container": req.Container})
		data, err := handler(req)
		if err != nil {
			entry.WithError(err).Debug("request failed")
			writeResp(rw, ipcmsg.Response{OK: false, Error: err.Error()})
			continue
		}
		raw, err := json.Marshal(data)
		if err != nil {
			writeResp(rw, ipcmsg.Response{OK: false, Error: "encode response"})
			continue
		}
		entry.Debug("request served")
		writeResp(rw, ipcmsg.Response{OK: true, Data: raw})
	}
}

func writeResp(w *bufio.ReadWriter, resp ipcmsg.Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = w.Write(b)
	_ = w.Flush()
}

// ErrNotImplemented is returned for unknown methods.
var ErrNotImplemented = errors.New("method not implemented")
