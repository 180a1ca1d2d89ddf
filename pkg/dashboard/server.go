package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cybershieldio/sdk/pkg/client"
	"github.com/cybershieldio/sdk/pkg/core"
	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/health"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/module"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// maxBodySize bounds request bodies accepted by the dashboard.
const maxBodySize = 1 << 20

// Server exposes a Shell over HTTP.
type Server struct {
	shell   *Shell
	health  *health.Handler
	metrics metrics.Collector
	logger  core.Logger
}

// NewServer creates a server for shell. health and m may be nil.
func NewServer(shell *Shell, h *health.Handler, m metrics.Collector, logger core.Logger) *Server {
	return &Server{
		shell:   shell,
		health:  h,
		metrics: metrics.OrNop(m),
		logger:  core.OrNop(logger),
	}
}

// modulesResponse lists the tabs and the active one.
type modulesResponse struct {
	Active string `json:"active"`
	Tabs   []Tab  `json:"tabs"`
}

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type phoneReportRequest struct {
	Number      string `json:"number"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Routes returns the dashboard router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	if s.health != nil {
		s.health.Routes(r)
	}
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/analytics", s.getAnalytics)
		r.Get("/modules", s.listModules)
		r.Post("/modules/phone/report", s.reportPhone)
		r.Route("/modules/{module}", func(r chi.Router) {
			r.Get("/", s.getModule)
			r.Post("/select", s.selectTab)
			r.Post("/scan", s.scanModule)
			r.Delete("/history", s.clearHistory)
			r.Get("/report", s.copyReport)
		})
	})
	return r
}

func (s *Server) listModules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modulesResponse{
		Active: s.shell.Active().Tab.ID,
		Tabs:   Tabs(),
	})
}

func (s *Server) selectTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Select(r.Context(), chi.URLParam(r, "module")))
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Analytics(r.Context()))
}

func (s *Server) getModule(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// scanModule submits a scan. A failed scan is answered with the unchanged
// view; only rejected input and a busy module produce an error status.
func (s *Server) scanModule(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := scan.DecodeRequest(p.Module(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := p.Submit(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, sdkerrors.ErrScanInProgress):
			writeError(w, http.StatusConflict, err)
			return
		case errors.Is(err, sdkerrors.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Debug("%s scan failed, serving previous state: %v", p.Module(), err)
	}
	writeJSON(w, http.StatusOK, p.View())
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	if err := p.ClearHistory(r.Context()); err != nil {
		s.logger.Debug("%s history clear failed: %v", p.Module(), err)
	}
	writeJSON(w, http.StatusOK, p.View())
}

func (s *Server) copyReport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	text, err := p.CopyReport()
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func (s *Server) reportPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneReportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, sdkerrors.E(sdkerrors.KindInvalidInput, "dashboard.reportPhone", err))
		return
	}
	err := s.shell.Phone().SubmitReport(r.Context(), req.Number, req.Category, req.Description)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case errors.Is(err, sdkerrors.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, upstreamStatus(err), err)
	}
}

// upstreamStatus maps a failed service call to the dashboard's answer. A
// 4xx from the service is passed through; transport and 5xx failures become
// 502 or 504. Anything else is a local fault.
func upstreamStatus(err error) int {
	if httpErr, ok := client.IsHTTPError(err); ok && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return httpErr.StatusCode
	}
	switch {
	case sdkerrors.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case sdkerrors.IsTimeoutError(err):
		return http.StatusGatewayTimeout
	case sdkerrors.IsNetworkError(err), sdkerrors.IsDecodeError(err),
		sdkerrors.GetKind(err) == sdkerrors.KindServer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// panel resolves the {module} parameter, answering 404 when it names no
// scan module.
func (s *Server) panel(w http.ResponseWriter, r *http.Request) (module.Panel, bool) {
	m, err := scan.ParseModule(chi.URLParam(r, "module"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return s.shell.Panel(m), true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	resp := errorResponse{Error: err.Error()}
	if k := sdkerrors.GetKind(err); k != sdkerrors.KindUnknown {
		resp.Kind = k.String()
	}
	writeJSON(w, code, resp)
}
