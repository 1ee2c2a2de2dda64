// Copyright (C) 2025 moltbook
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package service

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/config"
	"github.com/moltbook/agentprivacy/health"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/metrics"
	"github.com/moltbook/agentprivacy/storage"
)

// Server wires the component packages to net/http. It holds no domain
// state of its own beyond a per-channel rotation guard.
type Server struct {
	store   *storage.Store
	rotator *channel.Rotator
	health  *health.HealthChecker
	logger  logger.Logger
	cfg     *config.Config
}

// NewServer builds a Server over an already-opened store.
func NewServer(cfg *config.Config, store *storage.Store, log logger.Logger) *Server {
	checker := health.NewHealthChecker(5 * time.Second)
	checker.RegisterCheck("storage", health.DatabaseHealthCheck(store.Ping))

	return &Server{
		store:   store,
		rotator: channel.NewRotator(),
		health:  checker,
		logger:  log,
		cfg:     cfg,
	}
}

// Routes builds the http.ServeMux for the /api/v1 prefix, plus the health
// and metrics endpoints at cfg.Health.Path and cfg.Metrics.Path; each of
// those two is mounted only when its Enabled flag is set. It uses Go 1.22+
// method+pattern routing (no router framework),
// matching the teacher's http transport style.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/agents/register", s.instrument("agents.register", s.handleRegisterAgent))
	mux.HandleFunc("GET /api/v1/agents/search", s.instrument("agents.search", s.handleSearchAgents))
	mux.HandleFunc("GET /api/v1/agents/{did}", s.instrument("agents.get", s.handleGetAgent))
	mux.HandleFunc("PATCH /api/v1/agents/{did}", s.instrument("agents.patch", s.handleUpdateAgent))
	mux.HandleFunc("POST /api/v1/agents/{did}/nft", s.instrument("agents.nft", s.handleAddCredential))

	mux.HandleFunc("POST /api/v1/channels", s.instrument("channels.create", s.handleCreateChannel))
	mux.HandleFunc("GET /api/v1/channels", s.instrument("channels.list", s.handleListChannels))
	mux.HandleFunc("GET /api/v1/channels/{id}", s.instrument("channels.get", s.handleGetChannel))
	mux.HandleFunc("DELETE /api/v1/channels/{id}", s.instrument("channels.delete", s.handleDeleteChannel))
	mux.HandleFunc("POST /api/v1/channels/{id}/join", s.instrument("channels.join", s.handleJoinChannel))
	mux.HandleFunc("POST /api/v1/channels/{id}/leave", s.instrument("channels.leave", s.handleLeaveChannel))
	mux.HandleFunc("POST /api/v1/channels/{id}/rotate", s.instrument("channels.rotate", s.handleRotateChannel))

	mux.HandleFunc("GET /api/v1/invitations", s.instrument("invitations.list", s.handleListInvitations))
	mux.HandleFunc("POST /api/v1/invitations/{id}/accept", s.instrument("invitations.accept", s.handleAcceptInvitation))
	mux.HandleFunc("POST /api/v1/invitations/{id}/reject", s.instrument("invitations.reject", s.handleRejectInvitation))

	mux.HandleFunc("POST /api/v1/channels/{id}/messages", s.instrument("messages.send", s.handleSendMessage))
	mux.HandleFunc("GET /api/v1/channels/{id}/messages", s.instrument("messages.list", s.handleListMessages))

	if s.cfg.Health.Enabled {
		mux.HandleFunc("GET "+s.cfg.Health.Path, s.handleHealthz)
	}
	if s.cfg.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Metrics.Path, promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	return mux
}

// instrument wraps a handler with request-duration/count metrics keyed by
// a stable route label (not the raw path, which would blow up label
// cardinality with path parameters).
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.HTTPRequests.WithLabelValues(route, http.StatusText(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully within cfg.Server.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.ListenAddr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("service façade listening", logger.String("addr", s.cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	result := s.health.GetSystemHealth(r.Context())
	status := http.StatusOK
	if result.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}
