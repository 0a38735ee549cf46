package routes

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"p9e.in/loantracker/config"
	"p9e.in/loantracker/handlers"
	"p9e.in/loantracker/middleware"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/pkg/geocode"
	"p9e.in/loantracker/pkg/identity"
	"p9e.in/loantracker/utils"
)

const defaultMaxBodyBytes = 15 << 20 // 15 MB

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	gw := identity.NewService(config.DB, []byte(os.Getenv("JWT_SECRET")))
	middleware.SetGateway(gw)
	handlers.SetIdentityGateway(gw)
	handlers.SetGeocoder(geocode.NewClient(os.Getenv("GEOCODER_URL")))

	// Auth routes get the strict limiter, everything else under /api the
	// looser one. Both are rolling 1-minute windows per client IP.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	apiLimiter := middleware.NewRateLimiter(100, time.Minute)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "Route not found")
	})

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.Use(authLimiter.Middleware)
	auth.HandleFunc("/login", handlers.Login).Methods("POST")
	auth.HandleFunc("/refresh", handlers.Refresh).Methods("POST")

	// =====================================================
	// Protected API Routes (bearer token, fresh profile check per request)
	// =====================================================
	api := r.PathPrefix("/api").Subrouter()
	api.Use(apiLimiter.Middleware)
	api.Use(middleware.AuthMiddleware)

	api.HandleFunc("/geocode/reverse", handlers.ReverseGeocode).Methods("GET")

	// Agent routes
	api.Handle("/visits", agentOnly(handlers.SubmitVisit)).Methods("POST")
	api.Handle("/visits/my", agentOnly(handlers.MyVisits)).Methods("GET")
	api.Handle("/uploads/photos", agentOnly(handlers.UploadPhotos)).Methods("POST")

	// Manager routes
	api.Handle("/visits/search", managerOnly(handlers.SearchVisits)).Methods("GET")
	api.Handle("/users", managerOnly(handlers.ListUsers)).Methods("GET")
	api.Handle("/users", managerOnly(handlers.CreateUser)).Methods("POST")
	api.Handle("/users/{id}/deactivate", managerOnly(handlers.DeactivateUser)).Methods("PATCH")
	api.Handle("/users/{id}/reset-password", managerOnly(handlers.ResetPassword)).Methods("PATCH")
	api.Handle("/audit", managerOnly(handlers.ListAuditLogs)).Methods("GET")

	return middleware.Recovery(
		middleware.SecurityHeaders(
			middleware.RequestLogging(
				middleware.MaxBodyBytes(maxBodyBytes(), r))))
}

func agentOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(models.RoleFieldAgent, h)
}

func managerOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(models.RoleCollectionManager, h)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func maxBodyBytes() int64 {
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxBodyBytes
}
