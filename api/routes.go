package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v2", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/accounts/{principal}", s.handleAccount)
		r.Get("/blocks/{height}", s.handleBlock)
		r.Post("/transactions", s.handleSubmit)
		r.Get("/receipts/{handle}", s.handleReceipt)
		r.Post("/contracts/call-read/{contract}/{function}", s.handleCallRead)
	})
	return r
}
