package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PatientIDPrefix — обязательный префикс идентификатора пациента.
const PatientIDPrefix = "P-"

// PatientIDMinLength — минимальная длина идентификатора пациента (вместе с префиксом).
const PatientIDMinLength = 8

// Ошибки валидации входных данных. Проверяются до обращения к backend.
var (
	// ErrInvalidPatientID — идентификатор пациента не начинается с "P-" или короче 8 символов.
	ErrInvalidPatientID = errors.New("некорректный идентификатор пациента: ожидается префикс P- и длина не меньше 8")
	// ErrEmptyPatientID — идентификатор пациента не задан.
	ErrEmptyPatientID = errors.New("идентификатор пациента не задан")
	// ErrEmptySummary — описание записи не задано.
	ErrEmptySummary = errors.New("описание диагноза и лечения обязательно")
)

// ValidationError — ошибка валидации поля формы.
type ValidationError struct {
	// Field — имя поля в протоколе backend.
	Field string
	// Err — одна из ошибок-сентинелов пакета.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidatePatientID проверяет форму идентификатора пациента для загрузки записи.
func ValidatePatientID(id string) error {
	if id == "" {
		return &ValidationError{Field: "patient_id", Err: ErrEmptyPatientID}
	}
	if !strings.HasPrefix(id, PatientIDPrefix) || len(id) < PatientIDMinLength {
		return &ValidationError{Field: "patient_id", Err: ErrInvalidPatientID}
	}
	return nil
}

// UploadRequest — запрос врача на загрузку новой записи пациента.
// Не сохраняется на стороне портала.
type UploadRequest struct {
	PatientID string `json:"patient_id"`
	Summary   string `json:"problem_summary"`
	// ReportURL — необязательная ссылка на внешний отчёт.
	ReportURL string `json:"report_url,omitempty"`
}

// Validate проверяет запрос до отправки в backend.
func (u UploadRequest) Validate() error {
	if err := ValidatePatientID(u.PatientID); err != nil {
		return err
	}
	if strings.TrimSpace(u.Summary) == "" {
		return &ValidationError{Field: "problem_summary", Err: ErrEmptySummary}
	}
	return nil
}

// HistoryRecord — запись истории болезни (проекция ответа backend, только чтение).
type HistoryRecord struct {
	ID             string    `json:"_id"`
	Date           Timestamp `json:"date"`
	AuthorDoctorID string    `json:"doctor_id_ref"`
	Summary        string    `json:"problem_summary"`
	// ReportURL — пустая строка, если backend вернул null.
	ReportURL string `json:"report_url"`
}

// HasReport сообщает, приложена ли ссылка на внешний отчёт.
func (r HistoryRecord) HasReport() bool {
	return r.ReportURL != ""
}

// Timestamp — дата записи. Backend отдаёт ISO-8601 как с часовым поясом,
// так и без него (naive isoformat), поэтому разбор нестрогий.
type Timestamp struct {
	time.Time
}

// timestampLayouts — поддерживаемые форматы даты в порядке проверки.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp разбирает дату записи. Неизвестный формат — нулевое время и ошибка.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("неизвестный формат даты %q", s)
}

// UnmarshalJSON принимает строку даты или null.
// Нераспознанная дата не ломает разбор всей истории: запись получает нулевое время.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("дата записи: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = parsed
	return nil
}

// MarshalJSON сериализует дату в RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
