package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/repository"
)

// memSessionRepo — in-memory SessionRepository для тестов.
type memSessionRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]model.Session
	failGet error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{rows: map[uuid.UUID]model.Session{}}
}

func (m *memSessionRepo) Get(_ context.Context, id uuid.UUID) (*repository.PortalSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.PortalSession{ID: id, Session: s, CreatedAt: time.Now()}, nil
}

func (m *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memSessionRepo) Replace(_ context.Context, previous, id uuid.UUID, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if previous != uuid.Nil {
		delete(m.rows, previous)
	}
	m.rows[id] = s
	return nil
}

func newTestPostgresStore(t *testing.T) (*PostgresStore, *memSessionRepo) {
	t.Helper()
	codec, err := NewCookieCodec("test-key")
	if err != nil {
		t.Fatalf("NewCookieCodec: %v", err)
	}
	repo := newMemSessionRepo()
	return NewPostgresStore(codec, CookieOptions{MaxAge: time.Hour}, repo, testLogger()), repo
}

func TestPostgresStore_SaveLoadClear(t *testing.T) {
	store, repo := newTestPostgresStore(t)
	want := doctorSession(t)

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodPost, "/login", nil), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("ожидалась одна строка, получено %d", len(repo.rows))
	}

	req := requestWithCookies(t, w, nil)
	got, err := store.Load(req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, ожидается %+v", got, want)
	}

	w2 := httptest.NewRecorder()
	if err := store.Clear(w2, req); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Errorf("после Clear осталось строк: %d", len(repo.rows))
	}

	// Копия cookie после logout указывает на удалённую строку
	if got, err := store.Load(req); err != nil || !got.IsEmpty() {
		t.Errorf("после Clear: %+v, %v", got, err)
	}
}

// TestPostgresStore_NoMaxAge проверяет, что без ограничения срока жизни
// строка сессии читается спустя любое время.
func TestPostgresStore_NoMaxAge(t *testing.T) {
	codec, err := NewCookieCodec("test-key")
	if err != nil {
		t.Fatalf("NewCookieCodec: %v", err)
	}
	store := NewPostgresStore(codec, CookieOptions{}, newMemSessionRepo(), testLogger())
	issued := time.Now()
	store.now = func() time.Time { return issued }

	want := doctorSession(t)
	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodPost, "/login", nil), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	req := requestWithCookies(t, w, nil)

	store.now = func() time.Time { return issued.Add(5 * 365 * 24 * time.Hour) }
	got, err := store.Load(req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, ожидается %+v", got, want)
	}
}

func TestPostgresStore_SaveReplacesPrevious(t *testing.T) {
	store, repo := newTestPostgresStore(t)

	w1 := httptest.NewRecorder()
	if err := store.Save(w1, httptest.NewRequest(http.MethodPost, "/login", nil), doctorSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := requestWithCookies(t, w1, nil)

	w2 := httptest.NewRecorder()
	if err := store.Save(w2, first, doctorSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Errorf("повторный вход должен заменить строку, строк: %d", len(repo.rows))
	}
	if got, _ := store.Load(first); !got.IsEmpty() {
		t.Errorf("прежняя cookie вернула %+v", got)
	}
}

func TestPostgresStore_LoadInfrastructureError(t *testing.T) {
	store, repo := newTestPostgresStore(t)

	w := httptest.NewRecorder()
	if err := store.Save(w, httptest.NewRequest(http.MethodPost, "/login", nil), doctorSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	repo.failGet = errors.New("connection refused")

	got, err := store.Load(requestWithCookies(t, w, nil))
	if err == nil {
		t.Fatal("ожидалась ошибка инфраструктуры")
	}
	if !got.IsEmpty() {
		t.Errorf("при ошибке сессия должна быть пустой: %+v", got)
	}
}

func TestPostgresStore_NoCookie(t *testing.T) {
	store, _ := newTestPostgresStore(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	got, err := store.Load(req)
	if err != nil || !got.IsEmpty() {
		t.Errorf("Load без cookie: %+v, %v", got, err)
	}
	if err := store.Clear(httptest.NewRecorder(), req); err != nil {
		t.Errorf("Clear без cookie: %v", err)
	}
}

func TestPostgresStore_SaveRejectsIncomplete(t *testing.T) {
	store, repo := newTestPostgresStore(t)
	err := store.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil), model.Session{})
	if !errors.Is(err, model.ErrIncompleteSession) {
		t.Fatalf("ожидалась ErrIncompleteSession, получено %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("частичная сессия не должна сохраняться")
	}
}
