// Пакет apiclient — HTTP-клиент backend истории болезни.
// Единственная базовая точка (PM_BACKEND_URL), TLS с кастомным CA (PM_BACKEND_CA_CERT_PATH).
// Операции: Register, Login, UploadRecord, MyHistory, PatientHistory.
// Повторов, backoff и кэширования нет: один запрос на вызов.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// TokenProvider возвращает credential текущей сессии.
// ok=false — сессии нет, запрос уходит без Authorization.
type TokenProvider func(ctx context.Context) (token string, ok bool)

// Config — параметры подключения к backend.
type Config struct {
	// BaseURL — базовый URL backend (например, http://localhost:5000).
	BaseURL string
	// Timeout — таймаут одного HTTP-запроса.
	Timeout time.Duration
	// CACertPath — путь к CA-сертификату (пустая строка — системный пул).
	CACertPath string
}

// LoginResult — результат успешного входа. Вызывающий сохраняет его в Store.
type LoginResult struct {
	Token     string
	Role      rbac.Role
	SubjectID string
}

// Session возвращает сессию из результата входа.
func (r LoginResult) Session() (model.Session, error) {
	return model.NewSession(r.Token, r.Role, r.SubjectID)
}

// Client — HTTP-клиент backend.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент backend.
// tokenProvider может быть nil — тогда все запросы без Authorization.
func New(cfg Config, tokenProvider TokenProvider, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("некорректный URL backend %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	if cfg.CACertPath != "" {
		tlsConfig, err := buildTLSConfig(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата backend: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат backend добавлен в пул доверия",
			slog.String("ca_cert", cfg.CACertPath),
		)
	}

	if tokenProvider == nil {
		tokenProvider = func(context.Context) (string, bool) { return "", false }
	}

	return &Client{
		baseURL:       base,
		httpClient:    httpClient,
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "backend_client")),
	}, nil
}

// BaseURL возвращает базовый URL backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит PEM-блоков", caCertPath)
	}

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// --- Тела запросов и ответов backend ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerResponse struct {
	Msg string `json:"msg"`
	ID  string `json:"id"`
}

type loginResponse struct {
	Msg          string `json:"msg"`
	Token        string `json:"token"`
	Role         string `json:"role"`
	UserIdentity string `json:"user_identity"`
}

type uploadResponse struct {
	Msg     string `json:"msg"`
	Patient string `json:"patient"`
}

type historyResponse struct {
	History []model.HistoryRecord `json:"history"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

// Register регистрирует пользователя и возвращает присвоенный идентификатор.
// POST /auth/register. Вход не выполняется.
func (c *Client) Register(ctx context.Context, email, password string, role rbac.Role) (string, error) {
	const op = "register"
	if !role.IsValid() {
		return "", fmt.Errorf("%s: %w", op, rbac.ErrInvalidRole)
	}

	var resp registerResponse
	body := credentialsRequest{Email: email, Password: password, Role: role.String()}
	if err := c.do(ctx, op, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &Error{Op: op, Kind: KindTransport, Err: errors.New("ответ без id")}
	}
	return resp.ID, nil
}

// Login выполняет вход. POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const op = "login"

	var resp loginResponse
	body := credentialsRequest{Email: email, Password: password}
	if err := c.do(ctx, op, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResult{}, err
	}

	role, err := rbac.ParseRole(resp.Role)
	if err != nil {
		return LoginResult{}, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	if resp.Token == "" || resp.UserIdentity == "" {
		return LoginResult{}, &Error{Op: op, Kind: KindTransport, Err: errors.New("ответ без token или user_identity")}
	}
	return LoginResult{Token: resp.Token, Role: role, SubjectID: resp.UserIdentity}, nil
}

// UploadRecord загружает запись пациента (только врач). POST /records/upload.
// Некорректный запрос не отправляется: возвращается model.ValidationError.
// Возвращает идентификатор пациента, под которым сохранена запись.
func (c *Client) UploadRecord(ctx context.Context, req model.UploadRequest) (string, error) {
	const op = "upload_record"
	if err := req.Validate(); err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := c.do(ctx, op, http.MethodPost, "/records/upload", req, &resp); err != nil {
		return "", err
	}
	if resp.Patient == "" {
		return req.PatientID, nil
	}
	return resp.Patient, nil
}

// MyHistory возвращает историю текущего пациента в порядке ответа backend.
// GET /records/my-history.
func (c *Client) MyHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	var resp historyResponse
	if err := c.do(ctx, "my_history", http.MethodGet, "/records/my-history", nil, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		return []model.HistoryRecord{}, nil
	}
	return resp.History, nil
}

// PatientHistory возвращает историю пациента по идентификатору (только врач).
// GET /records/patient-history/{id}. 404 — пустая история без ошибки.
func (c *Client) PatientHistory(ctx context.Context, patientID string) ([]model.HistoryRecord, error) {
	const op = "patient_history"
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, &model.ValidationError{Field: "patient_id", Err: model.ErrEmptyPatientID}
	}

	var resp historyResponse
	err := c.do(ctx, op, http.MethodGet, "/records/patient-history/"+url.PathEscape(patientID), nil, &resp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.HistoryRecord{}, nil
		}
		return nil, err
	}
	if resp.History == nil {
		return []model.HistoryRecord{}, nil
	}
	return resp.History, nil
}

// do выполняет запрос к backend и декодирует JSON-ответ в out.
// Ответ со статусом ≥ 400 возвращается как *Error с полем msg backend.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	outcome := outcomeOK
	defer func() {
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) {
				outcome = apiErr.Kind.String()
			}
		}
		backendRequestsTotal.WithLabelValues(op, outcome).Inc()
		backendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("сериализация запроса: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("создание запроса: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokenProvider(ctx); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend недоступен",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Ответ backend",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		var msg messageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &msg)
		return &Error{Op: op, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg.Msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("декодирование ответа: %w", err)}
	}
	return nil
}
