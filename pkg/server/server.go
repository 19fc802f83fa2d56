// Package server exposes the dex, quiz and romhack views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/notjagan/dexweb/pkg/config"
	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/quiz"
	"github.com/notjagan/dexweb/pkg/romhack"
)

type Server struct {
	config  *config.Config
	dex     *dex.Dex
	game    *quiz.Game
	romhack *romhack.Dex
}

func New(cfg *config.Config, d *dex.Dex, rh *romhack.Dex) *Server {
	return &Server{
		config:  cfg,
		dex:     d,
		game:    quiz.NewGame(d, cfg.Quiz.MaxAttempts),
		romhack: rh,
	}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	return Chain(mux,
		Recovery(),
		Logging(),
	)
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Server.Addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down.")
		err := srv.Shutdown(context.Background())
		if err != nil {
			log.Printf("error while shutting down server: %v", err)
		}
		s.dex.WaitPreloads()
	}()

	log.Printf("Hosting dexweb on %s.", s.config.Server.Addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error while serving: %w", err)
	}

	return nil
}
