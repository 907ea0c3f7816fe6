package http

import (
	"bytes"
	"context"
	stdhttp "net/http"
	"time"

	_ "embed"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abhi01978/NechGen/internal/db"
)

//go:embed static/index.html
var landingPage []byte

//go:embed static/auth.html
var authPage []byte

//go:embed static/dashboard.html
var dashboardPage []byte

// registerStaticRoutes serves the fixed documents. The dashboard is served
// without a server-side token check; protection is a client-side redirect,
// matching the shipped frontend.
func (s *Server) registerStaticRoutes() {
	s.mux.HandleFunc("GET /{$}", documentHandler("index.html", landingPage))
	s.mux.HandleFunc("GET /auth", documentHandler("auth.html", authPage))
	s.mux.HandleFunc("GET /dashboard", documentHandler("dashboard.html", dashboardPage))
}

func documentHandler(name string, body []byte) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		stdhttp.ServeContent(w, r, name, time.Time{}, bytes.NewReader(body))
	}
}

type healthResponse struct {
	Status int
	Body   struct {
		Status    string `json:"status"`
		Database  string `json:"database"`
		Generator string `json:"generator"`
	}
}

func (s *Server) registerHealthRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthz",
		Method:      stdhttp.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
	}, s.healthHandler)
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Generator = "ready"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if s.generator == nil {
		resp.Body.Status = "degraded"
		resp.Body.Generator = "unconfigured"
		if resp.Status == 0 {
			resp.Status = stdhttp.StatusServiceUnavailable
		}
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}
