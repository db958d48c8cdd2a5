// pkg/server/server.go

package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/invoicing-microservice/pkg/assembler"
	"github.com/invoicing-microservice/pkg/config"
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/items"
	"github.com/invoicing-microservice/pkg/logger"
)

const (
	maxUploadSize   = 5 * 1024 * 1024
	dateLayout      = "2006-01-02"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	router *mux.Router
	http   *http.Server
	asm    *assembler.Assembler
	log    *logger.Logger
	now    func() time.Time
}

func New(cfg config.ServerConfig, asm *assembler.Assembler, log *logger.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		asm:    asm,
		log:    log,
		now:    time.Now,
	}

	s.router.Use(requestID, s.accessLog)
	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/generate-invoice", s.generateInvoice).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "address", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ierr.WithError(err).
			WithHintf("could not listen on %s", s.http.Addr).
			Mark(ierr.ErrSystem)
	case <-ctx.Done():
		s.log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateInvoice renders the uploaded items file and returns the PDF as an
// attachment.
func (s *Server) generateInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, r, ierr.WithError(err).
			WithHint("expected a multipart form with an items file").
			Mark(ierr.ErrValidation))
		return
	}

	file, _, err := r.FormFile("items")
	if err != nil {
		s.writeError(w, r, ierr.WithError(err).
			WithHint("the items file is required").
			Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	issued, err := s.issueDate(r.FormValue("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lineItems, err := items.Read(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	inv, err := s.asm.Render(&buf, lineItems, issued)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+inv.FileName("pdf"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logFor(r, s.log).Warnw("failed to write response", "error", err)
	}
}

func (s *Server) issueDate(value string) (time.Time, error) {
	if value == "" {
		return s.now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("date must be in %s format", dateLayout).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}
