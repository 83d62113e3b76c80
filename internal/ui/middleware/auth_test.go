package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// stubStore — Store, возвращающий заданную сессию или ошибку.
type stubStore struct {
	session model.Session
	err     error
}

func (s *stubStore) Load(*http.Request) (model.Session, error) { return s.session, s.err }

func (s *stubStore) Save(http.ResponseWriter, *http.Request, model.Session) error { return nil }

func (s *stubStore) Clear(http.ResponseWriter, *http.Request) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	patientSession = model.Session{Token: "tok-p", Role: rbac.RolePatient, SubjectID: "P-123456"}
	doctorSession  = model.Session{Token: "tok-d", Role: rbac.RoleDoctor, SubjectID: "DR-abcdef"}
)

func TestSessionLoader_PutsSessionIntoContext(t *testing.T) {
	loader := NewSessionLoader(&stubStore{session: doctorSession}, testLogger())

	var got model.Session
	var token string
	var hasToken bool
	h := loader.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
		token, hasToken = TokenFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/doctor", nil))

	if got != doctorSession {
		t.Errorf("session = %+v", got)
	}
	if !hasToken || token != "tok-d" {
		t.Errorf("TokenFromContext = %q, %v", token, hasToken)
	}
}

func TestSessionLoader_EmptySessionHasNoToken(t *testing.T) {
	loader := NewSessionLoader(&stubStore{}, testLogger())

	called := false
	h := loader.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := TokenFromContext(r.Context()); ok {
			t.Error("у пустой сессии не должно быть token")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("обработчик не вызван")
	}
}

func TestSessionLoader_StoreFailure(t *testing.T) {
	loader := NewSessionLoader(&stubStore{err: errors.New("db down")}, testLogger())

	h := loader.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("обработчик не должен вызываться при сбое хранилища")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patient", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSessionFromContext_NoMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if s := SessionFromContext(r.Context()); !s.IsEmpty() {
		t.Errorf("ожидалась пустая сессия, получено %+v", s)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name         string
		session      model.Session
		role         rbac.Role
		wantCalled   bool
		wantLocation string
	}{
		{name: "аноним на /doctor", session: model.Session{}, role: rbac.RoleDoctor, wantLocation: "/"},
		{name: "врач на /patient", session: doctorSession, role: rbac.RolePatient, wantLocation: "/doctor"},
		{name: "пациент на /doctor", session: patientSession, role: rbac.RoleDoctor, wantLocation: "/patient"},
		{name: "пациент на /patient", session: patientSession, role: rbac.RolePatient, wantCalled: true},
		{name: "врач на /doctor", session: doctorSession, role: rbac.RoleDoctor, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := RequireRole(tt.role)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req = req.WithContext(WithSession(req.Context(), tt.session))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if called != tt.wantCalled {
				t.Errorf("called = %v, ожидается %v", called, tt.wantCalled)
			}
			if tt.wantLocation != "" {
				if rec.Code != http.StatusFound {
					t.Errorf("status = %d, ожидается 302", rec.Code)
				}
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q, ожидается %q", loc, tt.wantLocation)
				}
			}
		})
	}
}

func TestRequireRole_HTMX(t *testing.T) {
	h := RequireRole(rbac.RolePatient)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("обработчик не должен вызываться")
	}))

	req := httptest.NewRequest(http.MethodGet, "/patient/history", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect = %q", got)
	}
}
