package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"sketchcode/handlers/api/exports"
	"sketchcode/handlers/api/projects"
	"sketchcode/stores"
)

func setupRouter(store stores.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.HandleList(store))
			r.Post("/", projects.HandleCreate(store))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projects.HandleGet(store))
				r.Put("/", projects.HandleSave(store))
				r.Patch("/name", projects.HandleRename(store))
				r.Delete("/", projects.HandleDelete(store))
				r.Get("/export", projects.HandleExportSnapshot(store))
				r.Post("/fragments", projects.HandleInsertFragment(store))
			})
		})

		r.Route("/exports", func(r chi.Router) {
			r.Post("/", exports.HandleCreate(store))
			r.Get("/{id}", exports.HandleGet(store))
		})
	})

	return r
}

func waitForShutdown(server *http.Server) {
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-exit

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore()
	r := setupRouter(store)

	server := &http.Server{
		Addr:    *listenAddress,
		Handler: r,
	}

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown(server)
}
