package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/config"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/handlers"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/sessionstore"
)

// SetupRoutes wires every console endpoint onto a mux router, wrapped in
// the session middleware so each request carries its per-browser state.
func SetupRoutes(gw *gateway.Gateway, store *sessionstore.Store, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	docTypes := handlers.NewDocTypeHandler(gw, logger)
	r.HandleFunc("/api/document-types", docTypes.List).Methods("GET")
	r.HandleFunc("/api/document-types", docTypes.Create).Methods("POST")
	r.HandleFunc("/api/document-types/{type}", docTypes.Update).Methods("PUT")
	r.HandleFunc("/api/document-types/{type}/delete", docTypes.ArmDelete).Methods("POST")
	r.HandleFunc("/api/document-types/{type}/delete", docTypes.CancelDelete).Methods("DELETE")
	r.HandleFunc("/api/document-types/{type}/delete/confirm", docTypes.ConfirmDelete).Methods("POST")

	editors := handlers.NewEditorHandler(logger)
	r.HandleFunc("/api/editor/{key}", editors.Open).Methods("POST")
	r.HandleFunc("/api/editor/{key}", editors.Get).Methods("GET")
	r.HandleFunc("/api/editor/{key}", editors.Close).Methods("DELETE")
	r.HandleFunc("/api/editor/{key}/mode", editors.SetMode).Methods("PUT")
	r.HandleFunc("/api/editor/{key}/text", editors.SetText).Methods("PUT")
	r.HandleFunc("/api/editor/{key}/validate", editors.Validate).Methods("POST")
	r.HandleFunc("/api/editor/{key}/apply", editors.Apply).Methods("POST")

	configs := handlers.NewProcessingConfigHandler(gw, logger)
	r.HandleFunc("/api/processing-configs", configs.List).Methods("GET")
	r.HandleFunc("/api/processing-configs", configs.Create).Methods("POST")
	r.HandleFunc("/api/processing-configs/validate", configs.Validate).Methods("POST")
	r.HandleFunc("/api/processing-configs/{name}", configs.Update).Methods("PUT")
	r.HandleFunc("/api/processing-configs/{name}/delete", configs.ArmDelete).Methods("POST")
	r.HandleFunc("/api/processing-configs/{name}/delete", configs.CancelDelete).Methods("DELETE")
	r.HandleFunc("/api/processing-configs/{name}/delete/confirm", configs.ConfirmDelete).Methods("POST")

	pipelines := handlers.NewPipelineHandler(gw, logger)
	r.HandleFunc("/api/pipelines", pipelines.Overview).Methods("GET")
	r.HandleFunc("/api/pipelines/{type}/status", pipelines.Status).Methods("GET")
	r.HandleFunc("/api/pipelines/{type}/setup", pipelines.Setup).Methods("POST")
	r.HandleFunc("/api/pipelines/{type}/sync", pipelines.Sync).Methods("POST")
	r.HandleFunc("/api/pipelines/{type}/files", pipelines.Files).Methods("GET")
	r.HandleFunc("/api/pipelines/{type}/stage-files", pipelines.StageFiles).Methods("GET")
	r.HandleFunc("/api/pipelines/{type}/cleanup", pipelines.ArmCleanup).Methods("POST")
	r.HandleFunc("/api/pipelines/{type}/cleanup", pipelines.CancelCleanup).Methods("DELETE")
	r.HandleFunc("/api/pipelines/{type}/cleanup/confirm", pipelines.ConfirmCleanup).Methods("POST")

	comparisons := handlers.NewComparisonHandler(gw, logger)
	r.HandleFunc("/api/comparison/run", comparisons.Run).Methods("POST")
	r.HandleFunc("/api/comparison/results", comparisons.Results).Methods("GET")
	r.HandleFunc("/api/comparison/results", comparisons.Clear).Methods("DELETE")
	r.HandleFunc("/api/comparison/export.csv", comparisons.ExportCSV).Methods("GET")
	r.HandleFunc("/api/comparison/export.json", comparisons.ExportJSON).Methods("GET")

	models := handlers.NewModelHandler(gw, logger)
	r.HandleFunc("/api/models", models.List).Methods("GET")
	r.HandleFunc("/api/file-types/available", models.AvailableFileTypes).Methods("GET")

	return handlers.SessionMiddleware(store, r)
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, cfg config.Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
