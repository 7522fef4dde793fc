// Package http is the HTTP edge of the service: the router seam, the server
// and the JSON envelope every endpoint answers with
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "readnfc/internal/platform/errors"
	pnet "readnfc/internal/platform/net"
)

// HeaderRequestID is echoed on every enveloped response that carries a request id
const HeaderRequestID = "X-Request-ID"

// Envelope wraps every body the API writes; Data on success, Code/Error/Field on failure
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as is, without an envelope
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err as an error envelope with the status its code maps to
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	wr := perr.WireFrom(err)
	writeEnvelope(w, r, perr.HTTPStatus(err), Envelope{Code: wr.Code, Error: wr.Message, Field: wr.Field})
}

func writeEnvelope(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, env Envelope) {
	env.StatusCode = status
	env.Status = stdhttp.StatusText(status)
	env.RequestID = pnet.RequestID(r.Context())
	if env.RequestID != "" {
		w.Header().Set(HeaderRequestID, env.RequestID)
	}
	JSON(w, status, env)
}

// Response is returned by handlers written against Handle
type Response struct {
	// Status defaults to 200
	Status int
	// Body becomes Data, or the error envelope when it is an error
	Body   any
	Header stdhttp.Header
}

// Handle turns a return-style handler into a net/http one
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}
	switch resp.Status {
	case stdhttp.StatusNoContent:
		w.WriteHeader(stdhttp.StatusNoContent)
	case 0:
		writeEnvelope(w, r, stdhttp.StatusOK, Envelope{Data: resp.Body})
	default:
		writeEnvelope(w, r, resp.Status, Envelope{Data: resp.Body})
	}
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent is an empty 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error is a response whose status comes from err's code
func Error(err error) Response { return Response{Body: err} }
