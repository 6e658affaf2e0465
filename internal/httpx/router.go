package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/service/auth"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/service/verify"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/validate"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	auth      auth.Service
	verify    verify.Service
	uploads   *uploadStore
	limiter   RateLimiter
	maxUpload int64
	dbHealth  func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitSendOTP   = 5
	rateLimitVerifyOTP = 12
	healthCheckTimeout = 2 * time.Second
	uploadFormSlack    = 1 << 20
	multipartMemoryMax = 8 << 20
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, verifySvc verify.Service, uploadsDir string, maxUpload int64, limiter RateLimiter, dbHealth func(context.Context) error) (*Router, error) {
	uploads, err := newUploadStore(uploadsDir)
	if err != nil {
		return nil, err
	}
	r := &Router{
		mux:       http.NewServeMux(),
		logger:    logger,
		auth:      authSvc,
		verify:    verifySvc,
		uploads:   uploads,
		limiter:   limiter,
		maxUpload: maxUpload,
		dbHealth:  dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r, nil
}

// ServeHTTP applies CORS headers before delegating to the mux. The API
// fronts a mobile/web client, so the policy is permissive like the original
// deployment.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.Handle("/uploads/", r.uploads.handler())
	r.mux.HandleFunc("/register_user", r.audit(r.withRateLimit("register_user", rateLimitRegister, rateWindowDefault, r.handleRegister)))
	r.mux.HandleFunc("/login", r.audit(r.withRateLimit("login", rateLimitLogin, rateWindowDefault, r.handleLogin)))
	r.mux.HandleFunc("/send-otp", r.audit(r.withRateLimit("send-otp", rateLimitSendOTP, rateWindowDefault, r.handleSendOTP)))
	r.mux.HandleFunc("/verify-otp", r.audit(r.withRateLimit("verify-otp", rateLimitVerifyOTP, rateWindowDefault, r.handleVerifyOTP)))
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+uploadFormSlack)
	if err := req.ParseMultipartForm(multipartMemoryMax); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	username := strings.TrimSpace(req.FormValue("username"))
	email := strings.TrimSpace(req.FormValue("email"))
	password := req.FormValue("password")
	contact := strings.TrimSpace(req.FormValue("contact"))

	if !validate.Required(username, email, password, contact) {
		writeError(w, http.StatusBadRequest, "All fields required")
		return
	}
	if !validate.Email(email) {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if !validate.Phone(contact) {
		writeError(w, http.StatusBadRequest, "Invalid phone number")
		return
	}
	if !validate.Password(password) {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	var image string
	file, header, err := req.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image, err = r.uploads.save(file, header)
		if err != nil {
			if errors.Is(err, errUnsupportedImage) {
				writeError(w, http.StatusBadRequest, "Only image files allowed")
				return
			}
			r.logger.Error("image upload failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		// image is optional
	default:
		writeError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	user, err := r.auth.Register(req.Context(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Contact:  contact,
		Image:    image,
	})
	if err != nil {
		r.uploads.remove(image)
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
		r.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Registered successfully",
		"data": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"image":    nullableImage(user.Image),
		},
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !validate.Required(payload.Email, payload.Password) {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}
	user, token, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		r.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"contact":  user.Contact,
			"image":    nullableImage(user.Image),
		},
	})
}

func (r *Router) handleSendOTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !validate.Required(payload.Phone) {
		writeError(w, http.StatusBadRequest, "Phone required")
		return
	}
	sid, err := r.verify.Send(req.Context(), payload.Phone)
	if err != nil {
		r.logger.Error("otp send failed", "error", err)
		writeError(w, http.StatusInternalServerError, "OTP send failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "OTP sent successfully",
		"sid":     sid,
	})
}

func (r *Router) handleVerifyOTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !validate.Required(payload.Phone, payload.OTP) {
		writeError(w, http.StatusBadRequest, "Phone & OTP required")
		return
	}
	if err := r.verify.Check(req.Context(), payload.Phone, payload.OTP); err != nil {
		if errors.Is(err, verify.ErrCodeRejected) {
			writeError(w, http.StatusBadRequest, "Invalid OTP")
			return
		}
		r.logger.Error("otp verification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "OTP verification failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Phone verified",
	})
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// audit logs one structured line per request and feeds the metrics.
func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		r.logger.Info("http request", fields...)
		r.recordRequestMetrics(req.Method, req.URL.Path, status, duration)
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func clientIP(req *http.Request) string {
	if fwd := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); fwd != "" {
		if idx := strings.IndexRune(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func nullableImage(image string) any {
	if image == "" {
		return nil
	}
	return image
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}
