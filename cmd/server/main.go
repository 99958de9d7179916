package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/escobedo-lab/school/internal/api/http"
	"github.com/escobedo-lab/school/internal/attendance"
	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/config"
	"github.com/escobedo-lab/school/internal/db"
	"github.com/escobedo-lab/school/internal/delivery"
	"github.com/escobedo-lab/school/internal/grading"
	"github.com/escobedo-lab/school/internal/inventory"
	"github.com/escobedo-lab/school/internal/message"
	"github.com/escobedo-lab/school/internal/payment"
	"github.com/escobedo-lab/school/internal/rbac"
	"github.com/escobedo-lab/school/internal/resource"
	"github.com/escobedo-lab/school/internal/storage"
	"github.com/escobedo-lab/school/internal/student"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	students := student.NewSQLStore(dbh)
	attendances := attendance.NewSQLStore(dbh)
	deliveries := delivery.NewSQLStore(dbh)
	grades := grading.NewSQLStore(dbh)
	payments := payment.NewSQLStore(dbh)
	equipment := inventory.NewSQLStore(dbh)
	messages := message.NewSQLStore(dbh)
	resources := resource.NewSQLStore(dbh)
	events := audit.NewLog(dbh)

	// --- File storage (remote when configured, local disk otherwise) ---
	gw, err := storage.NewGateway(cfg.Storage())
	if err != nil {
		log.Fatalf("storage gateway: %v", err)
	}
	if gw.RemoteEnabled() {
		log.Printf("storage: remote bucket %q enabled", cfg.StorageBucket)
	} else {
		log.Printf("storage: local disk only (%s)", cfg.UploadDir)
	}

	authSvc := auth.NewService(cfg.JWTSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.TeacherLoginHandler(cfg.AdminUser, cfg.AdminPassHash, authSvc))
	r.Post("/auth/login-student", api.StudentLoginHandler(students, authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		pr.Route("/students", func(sr chi.Router) {
			sr.Use(rbac.Require("student:manage"))
			api.MountStudents(sr, students, gw, events)
		})

		pr.Route("/attendance", func(ar chi.Router) {
			ar.Use(rbac.Require("attendance:manage"))
			api.MountAttendance(ar, attendances, gw, events)
		})

		pr.Route("/deliveries", func(dr chi.Router) {
			api.MountDeliveries(dr, deliveries, students, gw, events)
		})

		pr.Route("/grading", func(gr chi.Router) {
			api.MountGrading(gr, grades)
		})

		pr.Route("/report-cards", func(rr chi.Router) {
			api.MountReportCards(rr, grades, students, gw, events)
		})

		pr.Route("/payments", func(yr chi.Router) {
			yr.Use(rbac.Require("payment:manage"))
			api.MountPayments(yr, payments, students, gw, events)
		})

		pr.Route("/receipts", func(yr chi.Router) {
			yr.Use(rbac.Require("payment:view"))
			api.MountReceipts(yr, payments, gw)
		})

		pr.Route("/equipment", func(er chi.Router) {
			er.Use(rbac.Require("equipment:manage"))
			api.MountInventory(er, equipment)
		})

		pr.Route("/maintenance", func(er chi.Router) {
			er.Use(rbac.Require("equipment:manage"))
			api.MountMaintenance(er, equipment)
		})

		pr.Route("/messages", func(mr chi.Router) {
			mr.Use(rbac.RequireAny("message:send", "message:view"))
			api.MountMessages(mr, messages)
		})

		pr.Route("/resources", func(xr chi.Router) {
			api.MountResources(xr, resources, students, gw, events)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (env=%s, db=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
