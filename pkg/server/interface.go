/*
Package server implements msgpack IPC for contact suggestion services.

The server provides a minimal interface for contact autocomplete using
msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports search requests,
usage recording, cache refresh and stats ops. Messages are processed
synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send
structured messages via stdin and receive responses through stdout. Each
message contains an ID field and an action selecting the operation.

Search requests use mainly this structure:

	{"id": "req_001", "action": "search", "q": "joh", "l": 8}

The server responds with ranked suggestions:

	{"id": "req_001", "s": [{"e": "john@x.com", "d": "John Smith <john@x.com>", "r": 1}], "c": 1, "t": 145}

Usage events and refreshes are fire-and-ack:

	{"id": "use_001", "action": "record_usage", "addr": "Pat <pat@x.com>"}
	{"id": "ref_001", "action": "refresh"}

Response structures include status information and error details when an
op fails.
*/
package server

// SearchRequest - minimal autocomplete request
type SearchRequest struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action,omitempty"` // "search" (default), "record_usage", "refresh", "stats", "health"
	Query   string `msgpack:"q,omitempty"`
	Limit   int    `msgpack:"l,omitempty"`
	Address string `msgpack:"addr,omitempty"` // for "record_usage"
	Name    string `msgpack:"name,omitempty"` // for "record_usage"
}

// WireSuggestion - one ranked result on the wire
type WireSuggestion struct {
	Email       string `msgpack:"e"`
	DisplayName string `msgpack:"d"`
	Domain      string `msgpack:"dom"`
	Initials    string `msgpack:"i"`
	Rank        uint16 `msgpack:"r"`
	Frequency   int    `msgpack:"f,omitempty"`
	Source      string `msgpack:"src,omitempty"`
}

// SearchResponse - ranked suggestions for one query
type SearchResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []WireSuggestion `msgpack:"s"`
	Count       int              `msgpack:"c"`
	TimeTaken   int64            `msgpack:"t"` // microseconds
}

// StatusResponse - ack for fire-and-ack ops
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// StatsResponse - engine counters
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// ErrorResponse - error details for a failed op
type ErrorResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Error  string `msgpack:"error"`
	Status int    `msgpack:"status"`
}
