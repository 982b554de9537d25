// Package api serves the gateway's HTTP surface: router relay ingest, local
// outbound submission, administration and inspection endpoints.
//
// Relay ingest is authenticated per router and every state changing endpoint
// requires the admin token. Inspection endpoints are open.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/gateway"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/inter/ientry"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/metrics"
	"github.com/rony4d/lp-gateway/queue"
	"github.com/rony4d/lp-gateway/routers"
)

const (
	maxBodyBytes = 2 * inter.MaxIncomingMessageSize
	listLimit    = 256
)

// Server holds the handlers.
type Server struct {
	gw     *gateway.Gateway
	queue  *queue.Queue
	sender inter.DomainAddress
	auth   Auth

	Log *logrus.Entry
}

// NewServer creates the API over a gateway and its queue. Outbound messages
// without an explicit sender are sent from sender.
func NewServer(gw *gateway.Gateway, q *queue.Queue, sender inter.DomainAddress, auth Auth) *Server {
	return &Server{
		gw:     gw,
		queue:  q,
		sender: sender,
		auth:   auth,
		Log:    logger.New("api"),
	}
}

// Handler returns the routed handler, with metrics exposed under /metrics
// when withMetrics is set.
func (s *Server) Handler(withMetrics bool) http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if withMetrics {
		metrics.RegisterMetrics()
		r.Handle("/metrics", promhttp.Handler())
	}

	r.With(s.requireRouter).Post("/inbound", s.handleInbound)

	r.Get("/session", s.handleSession)
	r.Get("/routers", s.handleRouters)
	r.Get("/domains/{domain}/routers", s.handleDomainRouters)
	r.Get("/entries/{fingerprint}", s.handleEntries)
	r.Get("/instances", s.handleInstances)
	r.Get("/queue", s.handlePending)
	r.Get("/queue/failed", s.handleFailed)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Post("/outbound", s.handleOutbound)
		r.Post("/batches/{domain}/start", s.handleStartBatch)
		r.Post("/batches/{domain}/end", s.handleEndBatch)

		r.Put("/routers", s.handleSetRouters)
		r.Post("/instances", s.handleAddInstance)
		r.Delete("/instances/{domain}/{address}", s.handleRemoveInstance)

		r.Post("/queue/{nonce}/process", s.handleProcess)
		r.Post("/queue/failed/{nonce}/process", s.handleProcessFailed)
	})
	return r
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		metrics.RecordHTTPRequest(r.Method, path, rec.status, time.Since(start))
		s.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"request_id": w.Header().Get(requestIDHeader),
		}).Trace("HTTP request served")
	})
}

// statusOf maps gateway errors onto HTTP statuses.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrNotEnoughRouters),
		errors.Is(err, gateway.ErrDomainNotSupported):
		return http.StatusUnprocessableEntity, "NOT_ROUTABLE"
	case errors.Is(err, gateway.ErrUnknownRouter),
		errors.Is(err, gateway.ErrMessageExpectedFromFirstRouter),
		errors.Is(err, gateway.ErrProofNotExpectedFromFirstRouter):
		return http.StatusForbidden, "ROUTER_REJECTED"
	case errors.Is(err, gateway.ErrUnknownInstance):
		return http.StatusForbidden, "UNKNOWN_INSTANCE"
	case errors.Is(err, gateway.ErrInstanceAlreadyAdded):
		return http.StatusConflict, "INSTANCE_STATE"
	case errors.Is(err, gateway.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	case errors.Is(err, gateway.ErrMessageDecodingFailed),
		errors.Is(err, gateway.ErrTooManyRouters),
		errors.Is(err, gateway.ErrDuplicateRouter),
		errors.Is(err, inter.ErrBatchLimitReached),
		errors.Is(err, inter.ErrNestedBatch),
		errors.Is(err, inter.ErrInvalidDomain):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, gateway.ErrMessagePackingNotStarted),
		errors.Is(err, gateway.ErrMessagePackingAlreadyStarted):
		return http.StatusConflict, "BATCH_STATE"
	case errors.Is(err, queue.ErrMessageInFlight):
		return http.StatusConflict, "IN_FLIGHT"
	case errors.Is(err, queue.ErrMessageNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, err.Error())
}

// handleInbound accepts relay deliveries in the same shape routers.HTTPSender
// posts them. The delivering router is the one the credentials belong to; a
// body naming another router is refused.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	router, ok := authenticatedRouter(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "router authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req routers.RelayRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}
	if req.Router != "" && inter.RouterID(req.Router) != router {
		writeError(w, http.StatusForbidden, "ROUTER_MISMATCH", "delivery names router "+req.Router+" but is authenticated as "+router.String())
		return
	}
	sender, err := inter.ParseDomainAddress(req.Sender)
	if err != nil {
		s.fail(w, err)
		return
	}
	nonce, err := s.gw.ReceiveMessage(sender, router, req.Payload)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"nonce": nonce})
}

type outboundRequest struct {
	Sender      string        `json:"sender,omitempty"`
	Destination string        `json:"destination"`
	Payload     hexutil.Bytes `json:"payload"`
}

func (s *Server) senderOf(raw string) (inter.DomainAddress, error) {
	if raw == "" {
		return s.sender, nil
	}
	return inter.ParseDomainAddress(raw)
}

func (s *Server) handleOutbound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req outboundRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}
	sender, err := s.senderOf(req.Sender)
	if err != nil {
		s.fail(w, err)
		return
	}
	destination, err := inter.ParseDomain(req.Destination)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.gw.Handle(sender, destination, inter.NewPayload(req.Payload)); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type batchRequest struct {
	Sender string `json:"sender,omitempty"`
}

func (s *Server) batchParams(w http.ResponseWriter, r *http.Request) (inter.DomainAddress, inter.Domain, bool) {
	var req batchRequest
	if r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
			return inter.DomainAddress{}, inter.Domain{}, false
		}
	}
	sender, err := s.senderOf(req.Sender)
	if err != nil {
		s.fail(w, err)
		return inter.DomainAddress{}, inter.Domain{}, false
	}
	destination, err := inter.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		s.fail(w, err)
		return inter.DomainAddress{}, inter.Domain{}, false
	}
	return sender, destination, true
}

func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	sender, destination, ok := s.batchParams(w, r)
	if !ok {
		return
	}
	if err := s.gw.StartBatch(sender, destination); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEndBatch(w http.ResponseWriter, r *http.Request) {
	sender, destination, ok := s.batchParams(w, r)
	if !ok {
		return
	}
	if err := s.gw.EndBatch(sender, destination); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"session": s.gw.SessionID()})
}

type routersResponse struct {
	Routers []inter.RouterID `json:"routers"`
	Session inter.SessionID  `json:"session"`
}

func (s *Server) handleRouters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, routersResponse{
		Routers: nonNil(s.gw.Routers()),
		Session: s.gw.SessionID(),
	})
}

func (s *Server) handleSetRouters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Routers []inter.RouterID `json:"routers"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}
	session, err := s.gw.SetRouters(req.Routers)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routersResponse{Routers: nonNil(req.Routers), Session: session})
}

func (s *Server) handleDomainRouters(w http.ResponseWriter, r *http.Request) {
	domain, err := inter.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		s.fail(w, err)
		return
	}
	routers, err := s.gw.RoutersForDomain(domain)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domain": domain, "routers": routers})
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	res := []string{}
	for _, instance := range s.gw.Instances() {
		res = append(res, instance.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": res})
}

func (s *Server) handleAddInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instance string `json:"instance"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}
	instance, err := inter.ParseDomainAddress(req.Instance)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.gw.AddInstance(instance); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"instance": instance.String()})
}

func (s *Server) handleRemoveInstance(w http.ResponseWriter, r *http.Request) {
	instance, err := inter.ParseDomainAddress(chi.URLParam(r, "domain") + "/" + chi.URLParam(r, "address"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.gw.RemoveInstance(instance); err != nil {
		if errors.Is(err, gateway.ErrUnknownInstance) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type entryView struct {
	Router  inter.RouterID  `json:"router"`
	Kind    string          `json:"kind"`
	Session inter.SessionID `json:"session"`
	Count   uint32          `json:"count"`
	Sender  string          `json:"sender,omitempty"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	raw, err := hexutil.Decode(chi.URLParam(r, "fingerprint"))
	if err != nil || len(raw) != common.HashLength {
		writeError(w, http.StatusBadRequest, "BAD_FINGERPRINT", "fingerprint must be 0x-prefixed 32 bytes hex")
		return
	}
	res := []entryView{}
	for _, pe := range s.gw.PendingEntries(hash.BytesToHash(raw)) {
		v := entryView{Router: pe.Router, Session: pe.Entry.Session(), Count: pe.Entry.Count()}
		switch e := pe.Entry.(type) {
		case ientry.MessageEntry:
			v.Kind = "message"
			v.Sender = e.Sender.String()
		case ientry.ProofEntry:
			v.Kind = "proof"
		}
		res = append(res, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": res})
}

type queuedView struct {
	Nonce   uint64         `json:"nonce"`
	Kind    string         `json:"kind"`
	Router  inter.RouterID `json:"router"`
	Sender  string         `json:"sender"`
	Message hexutil.Bytes  `json:"message"`
	Error   string         `json:"error,omitempty"`
}

func viewOf(nonce uint64, msg inter.GatewayMessage) queuedView {
	return queuedView{
		Nonce:   nonce,
		Kind:    msg.Kind.String(),
		Router:  msg.Router,
		Sender:  msg.Sender.String(),
		Message: msg.Message.Serialize(),
	}
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	res := []queuedView{}
	for nonce, msg := range s.queue.Pending(listLimit) {
		res = append(res, viewOf(nonce, msg))
	}
	sortViews(res)
	writeJSON(w, http.StatusOK, map[string]any{"messages": res})
}

func (s *Server) handleFailed(w http.ResponseWriter, r *http.Request) {
	res := []queuedView{}
	for nonce, failed := range s.queue.Failed(listLimit) {
		v := viewOf(nonce, failed.Message)
		v.Error = failed.Error
		res = append(res, v)
	}
	sortViews(res)
	writeJSON(w, http.StatusOK, map[string]any{"messages": res})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	s.process(w, r, s.queue.ProcessMessage)
}

func (s *Server) handleProcessFailed(w http.ResponseWriter, r *http.Request) {
	s.process(w, r, s.queue.ProcessFailedMessage)
}

func (s *Server) process(w http.ResponseWriter, r *http.Request, fn func(uint64) error) {
	nonce, err := strconv.ParseUint(chi.URLParam(r, "nonce"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_NONCE", err.Error())
		return
	}
	if err := fn(nonce); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
