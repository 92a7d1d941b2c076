package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hanpama/hostgraph/internal/hostrt"
	"github.com/hanpama/hostgraph/internal/protoreg"
)

// Handler is an http.Handler that projects posted records through the host
// runtime. A body is one Request or a JSON array of them.
type Handler struct {
	rt  *hostrt.Runtime
	opt Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// Registry, when set, decodes sources into protobuf record messages
	// instead of plain JSON maps.
	Registry *protoreg.Registry

	Logger *zap.Logger
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option       { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                       { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option          { return func(o *Options) { o.MaxBodyBytes = n } }
func WithRegistry(r *protoreg.Registry) Option { return func(o *Options) { o.Registry = r } }
func WithLogger(l *zap.Logger) Option          { return func(o *Options) { o.Logger = l } }

// New creates a projection handler for rt.
func New(rt *hostrt.Runtime, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	if op.Logger == nil {
		op.Logger = zap.NewNop()
	}
	return &Handler{rt: rt, opt: op}
}

// Mux routes /project to h and /metrics to the Prometheus exposition of g.
func Mux(h http.Handler, g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/project", h)
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Request asks for one record to be projected. Exactly one of Query and
// Fields must be set.
type Request struct {
	Type   string          `json:"type"`
	Query  string          `json:"query,omitempty"`
	Fields []string        `json:"fields,omitempty"`
	Source json.RawMessage `json:"source"`
}

type responseError struct {
	Message string `json:"message"`
}

type response struct {
	Data   any             `json:"data"`
	Errors []responseError `json:"errors,omitempty"`
}

func errorResponse(msg string) response {
	return response{Errors: []responseError{{Message: msg}}}
}

var errBodyTooLarge = errors.New("body too large")

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	single, batch, err := parseRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	start := time.Now()
	if batch != nil {
		out := make([]response, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i])
		}
		h.logRequest(len(batch), start)
		h.writeJSON(w, http.StatusOK, out)
		return
	}
	res := h.executeOne(ctx, single)
	h.logRequest(1, start)
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) logRequest(n int, start time.Time) {
	if ce := h.opt.Logger.Check(zap.DebugLevel, "projection request served"); ce != nil {
		ce.Write(zap.Int("projections", n), zap.Duration("duration", time.Since(start)))
	}
}

func (h *Handler) executeOne(ctx context.Context, req Request) response {
	switch {
	case req.Type == "":
		return errorResponse("missing 'type'")
	case (req.Query == "") == (len(req.Fields) == 0):
		return errorResponse("exactly one of 'query' and 'fields' is required")
	}
	source, err := h.decodeSource(req)
	if err != nil {
		return errorResponse(err.Error())
	}
	var data map[string]any
	if req.Query != "" {
		data, err = h.rt.ProjectQuery(ctx, req.Type, source, req.Query)
	} else {
		data, err = h.rt.ProjectFields(ctx, req.Type, source, req.Fields)
	}
	if err != nil {
		return errorResponse(err.Error())
	}
	return response{Data: data}
}

func (h *Handler) decodeSource(req Request) (any, error) {
	if len(req.Source) == 0 {
		return nil, nil
	}
	if h.opt.Registry != nil {
		return h.opt.Registry.Decode(req.Type, req.Source)
	}
	var v any
	if err := json.Unmarshal(req.Source, &v); err != nil {
		return nil, fmt.Errorf("invalid 'source': %w", err)
	}
	return v, nil
}

func parseRequest(r *http.Request, maxBody int64) (Request, []Request, error) {
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return Request{}, nil, errors.New("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return Request{}, nil, errBodyTooLarge
	}

	if len(body) > 0 && body[0] == '[' {
		var arr []Request
		if err := json.Unmarshal(body, &arr); err != nil {
			return Request{}, nil, errors.New("invalid JSON")
		}
		if len(arr) == 0 {
			return Request{}, nil, errors.New("empty batch")
		}
		return Request{}, arr, nil
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, nil, errors.New("invalid JSON")
	}
	return req, nil, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
