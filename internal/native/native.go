// Package native speaks the browser native messaging protocol: every
// message is a 4-byte little-endian length followed by that many bytes of
// UTF-8 JSON.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/repplus/paramscope/internal/snapshot"
)

// MaxMessageSize bounds a single incoming message.
const MaxMessageSize = 64 << 20

var (
	// ErrMessageTooLarge is returned for frames above MaxMessageSize.
	ErrMessageTooLarge = errors.New("native: message too large")
	// ErrBadMessage wraps frames that are not a JSON message.
	ErrBadMessage = errors.New("native: bad message")
)

// Actions understood by Handler
const (
	ActionSnapshot = "snapshot"
	ActionClear    = "clear"
	ActionPing     = "ping"
)

// Message from the extension
type Message struct {
	Action   string             `json:"action"`
	Snapshot *snapshot.Document `json:"snapshot,omitempty"`
}

// Counts summarizes a stored snapshot
type Counts struct {
	PageParams int `json:"pageParams"`
	Forms      int `json:"forms"`
	Inputs     int `json:"inputs"`
	Links      int `json:"links"`
	JSNames    int `json:"jsNames"`
}

// CountsOf returns the section sizes of doc.
func CountsOf(doc *snapshot.Document) Counts {
	return Counts{
		PageParams: len(doc.PageQueryParams),
		Forms:      len(doc.Forms),
		Inputs:     doc.InputCount(),
		Links:      len(doc.LinksWithParams),
		JSNames:    len(doc.JSNames),
	}
}

// Response to the extension
type Response struct {
	Success bool    `json:"success"`
	Action  string  `json:"action,omitempty"`
	Error   string  `json:"error,omitempty"`
	Path    string  `json:"path,omitempty"`
	URL     string  `json:"url,omitempty"`
	Counts  *Counts `json:"counts,omitempty"`
}

// ReadFrame reads one length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}
	content := make([]byte, length)
	if _, err := io.ReadFull(r, content); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return content, nil
}

// WriteFrame writes payload with its length prefix.
func WriteFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadMessage reads and decodes one message. A clean disconnect between
// frames returns io.EOF.
func ReadMessage(r io.Reader) (*Message, error) {
	content, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := sonic.Unmarshal(content, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	return &msg, nil
}

// WriteMessage encodes and writes one message.
func WriteMessage(w io.Writer, msg interface{}) error {
	content, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	return WriteFrame(w, content)
}

// Handler applies extension messages to the live snapshot file.
type Handler struct {
	// WriteLive stores a snapshot and returns where it went.
	WriteLive func(*snapshot.Document) (string, error)
	// ClearLive drops the stored snapshot.
	ClearLive func() error
	// LivePath reports the live file location for ping.
	LivePath func() (string, error)
	Logger   *slog.Logger

	last *snapshot.Document
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Handle processes one message and returns the reply.
func (h *Handler) Handle(msg *Message) Response {
	switch msg.Action {
	case ActionSnapshot:
		if msg.Snapshot == nil || msg.Snapshot.URL == "" {
			return Response{Action: msg.Action, Error: "missing snapshot"}
		}
		doc := msg.Snapshot
		doc.Normalize()
		path, err := h.WriteLive(doc)
		if err != nil {
			h.logger().Error("write live snapshot", "error", err)
			return Response{Action: msg.Action, Error: err.Error()}
		}
		h.last = doc
		counts := CountsOf(doc)
		h.logger().Debug("snapshot stored", "url", doc.URL, "path", path)
		return Response{Success: true, Action: msg.Action, Path: path, URL: doc.URL, Counts: &counts}

	case ActionClear:
		if err := h.ClearLive(); err != nil {
			return Response{Action: msg.Action, Error: err.Error()}
		}
		h.last = nil
		return Response{Success: true, Action: msg.Action}

	case ActionPing:
		resp := Response{Success: true, Action: "pong"}
		if h.LivePath != nil {
			if path, err := h.LivePath(); err == nil {
				resp.Path = path
			}
		}
		if h.last != nil {
			counts := CountsOf(h.last)
			resp.URL = h.last.URL
			resp.Counts = &counts
		}
		return resp
	}
	return Response{Action: msg.Action, Error: "unknown action"}
}

// Serve answers messages from r on w until r is closed. A clean disconnect
// returns nil; undecodable messages get an error reply.
func (h *Handler) Serve(r io.Reader, w io.Writer) error {
	for {
		msg, err := ReadMessage(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrBadMessage) {
				h.logger().Warn("bad message", "error", err)
				if werr := WriteMessage(w, Response{Error: err.Error()}); werr != nil {
					return werr
				}
				continue
			}
			return err
		}
		if err := WriteMessage(w, h.Handle(msg)); err != nil {
			return err
		}
	}
}
