package fakebackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims — claims access token, совместимые с backend:
// sub — id пользователя, role и идентификатор пациента или врача.
type identityClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	DoctorID  string `json:"doctor_id,omitempty"`
}

// authError — ошибка проверки токена; текст уходит клиенту в поле msg.
type authError string

func (e authError) Error() string { return string(e) }

// Ошибки проверки токена.
const (
	errMissingToken authError = "Missing Authorization Header"
	errExpiredToken authError = "Token has expired"
	errInvalidToken authError = "Invalid token"
)

// issueToken подписывает access token HS256.
func (s *Server) issueToken(u *user) (string, error) {
	now := s.now()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Role: u.Role,
	}
	switch u.Role {
	case rolePatient:
		claims.PatientID = u.Identity
	case roleDoctor:
		claims.DoctorID = u.Identity
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// authenticate извлекает и проверяет Bearer-токен запроса.
func (s *Server) authenticate(r *http.Request) (*identityClaims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingToken
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpiredToken
		}
		return nil, errInvalidToken
	}
	return claims, nil
}

// defaultTokenTTL — время жизни access token.
const defaultTokenTTL = time.Hour
