// auth.go — вход, регистрация и выход.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bigkaa/medhistory/portal-module/internal/apiclient"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/lifecycle"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/auth"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/pages"
)

// AuthBackend — операции backend для входа и регистрации.
type AuthBackend interface {
	Register(ctx context.Context, email, password string, role rbac.Role) (string, error)
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
}

// AuthHandler — обработчики публичной страницы, входа, регистрации и выхода.
type AuthHandler struct {
	backend AuthBackend
	store   auth.Store
	tracker *lifecycle.Tracker
	logger  *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(backend AuthBackend, store auth.Store, tracker *lifecycle.Tracker, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		backend: backend,
		store:   store,
		tracker: tracker,
		logger:  logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleIndex — GET /. Форма входа; ?mode=register — форма регистрации.
func (h *AuthHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.AuthPage(pages.AuthPageData{
		Session: uimiddleware.SessionFromContext(r.Context()),
		Mode:    pages.ParseAuthMode(r.URL.Query().Get("mode")),
	}))
}

// HandleLogin — POST /login.
// При успехе прежняя сессия закрывается, новая сохраняется целиком,
// затем 303 на /dashboard. При ошибке форма показывается с сообщением.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	fail := func(text string) {
		render(w, r, h.logger, http.StatusOK, pages.AuthPage(pages.AuthPageData{
			Session: uimiddleware.SessionFromContext(ctx),
			Mode:    pages.ModeLogin,
			Email:   email,
			Message: pages.Error(i18n.Tf(ctx, "auth.error_prefix", text)),
		}))
	}

	if email == "" || password == "" {
		fail(i18n.T(ctx, "auth.missing_fields"))
		return
	}

	result, err := h.backend.Login(ctx, email, password)
	if err != nil {
		logBackendError(ctx, h.logger, "login", err)
		fail(backendMessage(ctx, err, "auth.unknown_error"))
		return
	}
	session, err := result.Session()
	if err != nil {
		h.logger.Error("Backend вернул неполную сессию", slog.String("error", err.Error()))
		fail(i18n.T(ctx, "auth.unknown_error"))
		return
	}

	// Смены роли на месте нет: сначала выход из текущей сессии.
	current := uimiddleware.SessionFromContext(ctx)
	if !current.IsEmpty() {
		if err := h.logout(w, r, current); err != nil {
			h.internalError(w, "Ошибка закрытия прежней сессии", err)
			return
		}
	}

	if _, err := h.tracker.Apply(model.Session{}, lifecycle.Login(session.Role), session.SubjectID); err != nil {
		h.internalError(w, "Недопустимый переход сессии при входе", err)
		return
	}
	if err := h.store.Save(w, r, session); err != nil {
		h.internalError(w, "Ошибка сохранения сессии", err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleRegister — POST /register. Регистрация не выполняет вход:
// при успехе форма переключается в режим входа с присвоенным идентификатором.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := uimiddleware.SessionFromContext(ctx)
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	role, roleErr := rbac.ParseRole(r.PostFormValue("role"))

	fail := func(text string) {
		render(w, r, h.logger, http.StatusOK, pages.AuthPage(pages.AuthPageData{
			Session: session,
			Mode:    pages.ModeRegister,
			Email:   email,
			Role:    role,
			Message: pages.Error(i18n.Tf(ctx, "auth.error_prefix", text)),
		}))
	}

	switch {
	case email == "" || password == "":
		fail(i18n.T(ctx, "auth.missing_fields"))
		return
	case roleErr != nil:
		fail(i18n.T(ctx, "auth.invalid_role"))
		return
	}

	id, err := h.backend.Register(ctx, email, password, role)
	if err != nil {
		logBackendError(ctx, h.logger, "register", err)
		fail(backendMessage(ctx, err, "auth.unknown_error"))
		return
	}

	h.logger.Info("Пользователь зарегистрирован",
		slog.String("role", role.String()),
		slog.String("subject_id", id),
	)
	render(w, r, h.logger, http.StatusOK, pages.AuthPage(pages.AuthPageData{
		Session: session,
		Mode:    pages.ModeLogin,
		Message: pages.OK(i18n.Tf(ctx, "auth.register.success", id)),
	}))
}

// HandleLogout — POST /logout. Очищает сессию и ведёт на публичную страницу.
// Выход без сессии допустим.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.logout(w, r, uimiddleware.SessionFromContext(r.Context())); err != nil {
		h.internalError(w, "Ошибка очистки сессии", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logout очищает хранилище и фиксирует переход в anonymous.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request, current model.Session) error {
	if err := h.store.Clear(w, r); err != nil {
		return err
	}
	// Недопустимый переход Tracker журналирует сам; хранилище уже очищено.
	_, _ = h.tracker.Apply(current, lifecycle.Logout(), current.SubjectID)
	return nil
}

func (h *AuthHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
}
