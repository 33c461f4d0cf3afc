package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/anveshk/osintdex/config"
	"github.com/anveshk/osintdex/db/kvdb"
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/db/userdb"
	"github.com/anveshk/osintdex/logger"
	"github.com/anveshk/osintdex/services/ingest"
	"github.com/anveshk/osintdex/validation"
	"github.com/gin-gonic/gin"
)

type server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	searchdb   searchdb.DB
	userdb     userdb.DB
	historydb  kvdb.DB
	ingest     *ingest.Service
	validator  *validation.Validator
	logger     logger.Logger
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()
	s.setupGracefulShutdown(ctx)

	return nil
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.searchdb, err = searchdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating search database", "err", err.Error())
		return err
	}
	s.userdb, err = userdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating user database", "err", err.Error())
		return err
	}
	s.historydb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating import history database", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	s.ingest = ingest.New(ctx, s.logger, s.searchdb, s.historydb, s.cfg.GetImportWorkers(), s.cfg.GetImportQueueSize())

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.searchdb, s.userdb, s.historydb, s.ingest, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
}

func (s *server) setupGracefulShutdown(ctx context.Context) {

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Info("starting to shut down http server")
		shutdownCtx := context.Background()
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer cancel()
		s.searchdb.Close()
		s.userdb.Close()
		s.historydb.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error shutting down http server", "err", err)
			return
		}
		s.logger.Info("shut down http server successfully")
	}()

	wg.Wait()
}
