// Пакет fakebackend — in-memory реализация контракта backend истории болезни
// для локальной разработки и тестов портала.
//
// Каждый запрос проверяется по встроенному OpenAPI-описанию (kin-openapi),
// пароли хранятся как bcrypt-хеши, access token — JWT HS256.
package fakebackend

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/crypto/bcrypt"
)

// Роли в протоколе backend.
const (
	rolePatient = "Patient"
	roleDoctor  = "Doctor"
)

// healthPath — проверка доступности; вне OpenAPI-контракта.
const healthPath = "/health"

// recordDateLayout — формат даты записи (ISO-8601 без часового пояса).
const recordDateLayout = "2006-01-02T15:04:05.000000"

// Options — параметры fake backend.
type Options struct {
	// Secret — ключ подписи JWT. Пустой — случайный ключ.
	Secret []byte
	// TokenTTL — время жизни access token (по умолчанию 1 час).
	TokenTTL time.Duration
	// BcryptCost — стоимость bcrypt (по умолчанию bcrypt.DefaultCost).
	BcryptCost int
	// Now — источник времени (для тестов).
	Now func() time.Time
}

// user — зарегистрированный пользователь.
type user struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         string
	// Identity — P-xxxxxx для пациента, DR-xxxxxx для врача.
	Identity string
}

// record — запись истории болезни.
type record struct {
	ID             string  `json:"_id"`
	PatientIDRef   string  `json:"patient_id_ref"`
	DoctorIDRef    string  `json:"doctor_id_ref"`
	Date           string  `json:"date"`
	ProblemSummary string  `json:"problem_summary"`
	ReportURL      *string `json:"report_url"`

	created time.Time
}

// Server — in-memory backend.
type Server struct {
	mu      sync.RWMutex
	users   map[string]*user // ключ — email
	records []record

	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time

	contract routers.Router
	logger   *slog.Logger
}

// New создаёт fake backend.
func New(opts Options, logger *slog.Logger) (*Server, error) {
	contract, err := loadContract(context.Background())
	if err != nil {
		return nil, err
	}

	secret := opts.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, secret); err != nil {
			return nil, fmt.Errorf("генерация ключа JWT: %w", err)
		}
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Server{
		users:      make(map[string]*user),
		secret:     secret,
		tokenTTL:   ttl,
		bcryptCost: cost,
		now:        now,
		contract:   contract,
		logger:     logger.With(slog.String("component", "fake_backend")),
	}, nil
}

// Handler возвращает HTTP-обработчик backend.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/records/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/records/my-history", s.handleMyHistory).Methods(http.MethodGet)
	r.HandleFunc("/records/patient-history/{patient_id}", s.handlePatientHistory).Methods(http.MethodGet)
	r.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeMsg(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	r.Use(s.validateRequests)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		notFound(w, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMsg(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// --- Auth ---

type registerRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Role     string              `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister — POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid email or malformed request")
		return
	}
	email := strings.TrimSpace(string(req.Email))
	if email == "" || req.Password == "" || req.Role == "" {
		badRequest(w, "Missing email, password, or role")
		return
	}

	var prefix string
	switch req.Role {
	case rolePatient:
		prefix = "P-"
	case roleDoctor:
		prefix = "DR-"
	default:
		badRequest(w, "Invalid role specified")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		internalError(w, "Password hashing failed")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		conflict(w, "User already exists")
		return
	}
	u := &user{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Identity:     prefix + shortID(),
	}
	s.users[email] = u
	s.mu.Unlock()

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("role", u.Role),
		slog.String("identity", u.Identity),
	)
	writeJSON(w, http.StatusCreated, map[string]string{
		"msg": req.Role + " registered successfully!",
		"id":  u.Identity,
	})
}

// handleLogin — POST /auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		badRequest(w, "Missing email or password")
		return
	}

	s.mu.RLock()
	u, ok := s.users[strings.TrimSpace(req.Email)]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		unauthorized(w, "Bad email or password")
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		internalError(w, "Token creation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"msg":           "Login Successful",
		"token":         token,
		"role":          u.Role,
		"user_identity": u.Identity,
	})
}

// --- Records ---

type uploadRequest struct {
	PatientID      string  `json:"patient_id"`
	ProblemSummary string  `json:"problem_summary"`
	ReportURL      *string `json:"report_url"`
}

// requireRole проверяет токен и роль. false — ответ уже записан.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, role string) (*identityClaims, bool) {
	claims, err := s.authenticate(r)
	if err != nil {
		unauthorized(w, err.Error())
		return nil, false
	}
	if claims.Role != role {
		forbidden(w, "Authorization required: "+role+" role")
		return nil, false
	}
	return claims, true
}

// handleUpload — POST /records/upload (только врач).
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.requireRole(w, r, roleDoctor)
	if !ok {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PatientID == "" || req.ProblemSummary == "" {
		badRequest(w, "Missing patient ID or problem summary")
		return
	}
	if req.ReportURL != nil && *req.ReportURL == "" {
		req.ReportURL = nil
	}

	now := s.now()
	rec := record{
		ID:             uuid.NewString(),
		PatientIDRef:   req.PatientID,
		DoctorIDRef:    claims.DoctorID,
		Date:           now.Format(recordDateLayout),
		ProblemSummary: req.ProblemSummary,
		ReportURL:      req.ReportURL,
		created:        now,
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{
		"msg":     "Record uploaded successfully",
		"patient": req.PatientID,
	})
}

// handleMyHistory — GET /records/my-history (только пациент).
func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.requireRole(w, r, rolePatient)
	if !ok {
		return
	}
	if claims.PatientID == "" {
		internalError(w, "Unique patient ID not found in token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": s.historyOf(claims.PatientID)})
}

// handlePatientHistory — GET /records/patient-history/{patient_id} (только врач).
func (s *Server) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, roleDoctor); !ok {
		return
	}

	var patientID string
	err := runtime.BindStyledParameterWithOptions("simple", "patient_id", mux.Vars(r)["patient_id"], &patientID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, "Invalid patient ID")
		return
	}

	history := s.historyOf(patientID)
	if len(history) == 0 {
		notFound(w, "No records found for Patient ID: "+patientID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// historyOf возвращает записи пациента, последние первыми.
func (s *Server) historyOf(patientID string) []record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]record, 0)
	for _, rec := range s.records {
		if rec.PatientIDRef == patientID {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].created.After(result[j].created)
	})
	return result
}

// shortID возвращает 6 последних hex-символов нового uuid.
func shortID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[len(id)-6:]
}
