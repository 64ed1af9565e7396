package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

// @title ODEPLAC PRO API
// @version 1.0
// @description Construction company management backend: catalog, obras, invoicing and client portal.
// @BasePath /api/v1
func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	log.SetFormatter(&log.JSONFormatter{})

	config.Connect()

	if err := config.Migrations(config.DB); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	// Seeding skips anything that already exists.
	if err := config.RunAllSeeding(); err != nil {
		log.Warnf("seeding encountered issues: %v", err)
	}

	handler := enableCORS(routes.RegisterRoutes())
	addr := fmt.Sprintf("%s:%d", config.App.Host, config.App.Port)
	log.Infof("server starting at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
