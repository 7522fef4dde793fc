// Package http provides http transport for the card reader
package http

import (
	stdhttp "net/http"
	"time"

	"readnfc/internal/modkit/httpkit"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/net/http/bind"
	"readnfc/internal/services/cardreader/domain"
)

// Deps are the ports the handlers call
type Deps struct {
	Query       domain.QueryPort
	Poller      domain.PollerPort
	Discovery   domain.DiscoveryPort
	Status      domain.StatusPort
	PollTimeout time.Duration
}

// noCardMessage is the body callers of the legacy route match on
const noCardMessage = "No card inserted."

// Register mounts card reader endpoints on the given router
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	// uid held by the monitor, never touches the reader
	httpkit.Get(r, "/uid", h.currentUID)

	httpkit.Get(r, "/readers", h.readers)
	httpkit.Get(r, "/status", h.status)

	// blocking read on the caller's request; no body means first reader, default timeout
	httpkit.PostJSON(r, "/read", h.read, bind.Options{AllowEmpty: true})
}

// RegisterCompat mounts the legacy getCardUID route
// bodies are unenveloped: {"cardUID": "..."} or 404 {"message": "No card inserted."}
func RegisterCompat(r httpkit.Router, q domain.QueryPort) {
	r.Get("/getCardUID", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		v, ok := q.CurrentUID(req.Context())
		if !ok {
			httpkit.Raw(w, stdhttp.StatusNotFound, compatMessage{Message: noCardMessage})
			return
		}
		httpkit.Raw(w, stdhttp.StatusOK, compatUID{CardUID: v})
	})
}

type compatUID struct {
	CardUID string `json:"cardUID"`
}

type compatMessage struct {
	Message string `json:"message"`
}

type handlers struct{ deps Deps }

func (h *handlers) currentUID(r *stdhttp.Request) (any, error) {
	v, ok := h.deps.Query.CurrentUID(r.Context())
	if !ok {
		return nil, perr.NotFoundf(noCardMessage)
	}
	return domain.UIDResponse{CardUID: v}, nil
}

func (h *handlers) readers(r *stdhttp.Request) (any, error) {
	rs, err := h.deps.Discovery.ListReaders(r.Context())
	if err != nil {
		return nil, err
	}
	return domain.ReaderList{Readers: rs}, nil
}

func (h *handlers) status(_ *stdhttp.Request) (any, error) {
	return h.deps.Status.Status(), nil
}

func (h *handlers) read(r *stdhttp.Request, in domain.ReadInput) (any, error) {
	timeout := h.deps.PollTimeout
	if in.TimeoutMs > 0 {
		timeout = time.Duration(in.TimeoutMs) * time.Millisecond
	}
	id, err := h.deps.Poller.ReadUIDBlocking(r.Context(), domain.Reader(in.Reader), timeout)
	if err != nil {
		return nil, err
	}
	return domain.UIDResponse{CardUID: id.String()}, nil
}
