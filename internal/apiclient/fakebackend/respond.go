package fakebackend

import (
	"encoding/json"
	"net/http"
)

// messageBody — формат ошибок backend: {"msg": "..."}.
type messageBody struct {
	Msg string `json:"msg"`
}

// writeJSON записывает JSON-ответ.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMsg записывает ответ с единственным полем msg.
func writeMsg(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, messageBody{Msg: msg})
}

// --- Конструкторы для типичных ошибок ---

// badRequest — 400 некорректные входные данные.
func badRequest(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusBadRequest, msg)
}

// unauthorized — 401 нет или просрочен токен.
func unauthorized(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusUnauthorized, msg)
}

// forbidden — 403 роль не допускает операцию.
func forbidden(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusForbidden, msg)
}

// notFound — 404 ресурс не найден.
func notFound(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusNotFound, msg)
}

// conflict — 409 ресурс уже существует.
func conflict(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusConflict, msg)
}

// internalError — 500 внутренняя ошибка.
func internalError(w http.ResponseWriter, msg string) {
	writeMsg(w, http.StatusInternalServerError, msg)
}
