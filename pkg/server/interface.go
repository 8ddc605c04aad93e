/*
Package server implements msgpack IPC for autocomplete sessions.

Clients write msgpack maps to stdin and read msgpack maps from stdout.
Every request carries an ID and an op; every reply echoes the ID.
Requests are processed one at a time, in order, with timing info in the reply.

# Sessions

A session is one omnibox: it keeps the previous result so matches from
providers that are still running survive into the next keystroke.

Start a session (or a new keystroke in an existing one):

	{"id": "1", "op": "start", "text": "goo", "page": "other", "providers": ["suggest"]}

The built-in providers answer at once and the reply carries the first ranked result:

	{"id": "1", "session": "6f0c...", "m": [{"u": "http://google.com/", "c": "http://google.com/", "r": 1280, "t": "history_url", "dflt": true}], "c": 1, "dc": true, "t": 212}

Providers that run outside the process deliver their matches as passes:

	{"id": "2", "op": "pass", "session": "6f0c...", "provider": "suggest", "class": "search", "done": true,
	 "matches": [{"u": "https://www.google.com/search?q=google+maps", "c": "google maps", "r": 600, "t": "search_suggest"}]}

A pass reply is marked pending when the notification is still held back by
notify_delay_ms; "flush" asks for it again later. "stop" ends the keystroke
and "close" drops the session.

# Errors

Failures are reported as ErrorResponse with an HTTP-like code:
400 malformed request, 404 unknown session, 429 throttled, 500 internal.
*/
package server

import "github.com/bastiangx/rankserve/pkg/match"

// Op names accepted in Request.Op.
const (
	OpStart = "start"
	OpPass  = "pass"
	OpFlush = "flush"
	OpStop  = "stop"
	OpClose = "close"
)

// Request is the envelope of every client message. Fields unused by an op are ignored.
type Request struct {
	ID      string `msgpack:"id"`
	Op      string `msgpack:"op"`
	Session string `msgpack:"session,omitempty"`

	// start
	Text          string   `msgpack:"text,omitempty"`
	Page          string   `msgpack:"page,omitempty"`
	Kind          string   `msgpack:"kind,omitempty"`
	PreventInline bool     `msgpack:"prevent_inline,omitempty"`
	Providers     []string `msgpack:"providers,omitempty"`

	// pass
	Provider string          `msgpack:"provider,omitempty"`
	Class    string          `msgpack:"class,omitempty"`
	Done     bool            `msgpack:"done,omitempty"`
	Matches  []IncomingMatch `msgpack:"matches,omitempty"`

	// start, stop
	Clear bool `msgpack:"clear,omitempty"`
}

// IncomingMatch is one candidate in a pass.
type IncomingMatch struct {
	Destination        string                `msgpack:"u"`
	Contents           string                `msgpack:"c"`
	Description        string                `msgpack:"d,omitempty"`
	Relevance          int                   `msgpack:"r"`
	Type               string                `msgpack:"t"`
	AllowedToBeDefault bool                  `msgpack:"dflt,omitempty"`
	FillIntoEdit       string                `msgpack:"f,omitempty"`
	Inline             string                `msgpack:"i,omitempty"`
	EntityID           string                `msgpack:"e,omitempty"`
	Group              int                   `msgpack:"g,omitempty"`
	Signals            *match.ScoringSignals `msgpack:"sig,omitempty"`
}

// ResultMatch is one ranked match in a reply.
type ResultMatch struct {
	Destination  string `msgpack:"u"`
	Contents     string `msgpack:"c"`
	Description  string `msgpack:"d,omitempty"`
	Relevance    int    `msgpack:"r"`
	Type         string `msgpack:"t"`
	Default      bool   `msgpack:"dflt"`
	FromPrevious bool   `msgpack:"prev,omitempty"`
	Group        int    `msgpack:"g,omitempty"`
	Inline       string `msgpack:"i,omitempty"`
	Duplicates   int    `msgpack:"n,omitempty"`
}

// ResultResponse carries the visible result of a session.
type ResultResponse struct {
	ID             string        `msgpack:"id"`
	Session        string        `msgpack:"session"`
	Matches        []ResultMatch `msgpack:"m"`
	Count          int           `msgpack:"c"`
	DefaultChanged bool          `msgpack:"dc"`
	Pending        bool          `msgpack:"pending,omitempty"`
	Done           bool          `msgpack:"done,omitempty"`
	TimeTaken      int64         `msgpack:"t"`
}

// StatusResponse answers close and announces readiness.
type StatusResponse struct {
	ID      string `msgpack:"id,omitempty"`
	Status  string `msgpack:"status"`
	Version string `msgpack:"version,omitempty"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
