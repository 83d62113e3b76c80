// Пакет auth — хранилище сессий портала.
// Шифрование cookie AES-256-GCM, реализации Store поверх cookie и PostgreSQL.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SessionCookieName — имя cookie сессии портала.
const SessionCookieName = "hh_session"

// sessionCookiePath — cookie видна всем маршрутам портала.
const sessionCookiePath = "/"

// CookieCodec шифрует/дешифрует содержимое cookie через AES-256-GCM.
type CookieCodec struct {
	// gcm — AEAD cipher для шифрования/дешифрования.
	gcm cipher.AEAD
}

// NewCookieCodec создаёт кодек.
// key — 32-байтовый ключ в base64 или произвольная строка (хешируется SHA-256).
// Если key пустой — генерируется случайный ключ (непостоянный между рестартами).
func NewCookieCodec(key string) (*CookieCodec, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			keyBytes = sha256Key(key)
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &CookieCodec{gcm: gcm}, nil
}

// Encrypt сериализует v в JSON, шифрует и возвращает base64-строку.
func (c *CookieCodec) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	// Уникальный nonce на каждое шифрование
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	// nonce prepended к ciphertext
	ciphertext := c.gcm.Seal(nonce, nonce, plaintext, nil)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt дешифрует base64-строку в v.
func (c *CookieCodec) Decrypt(encrypted string, v any) error {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return nil
}

// CookieOptions — атрибуты cookie сессии.
type CookieOptions struct {
	// Secure — флаг Secure (true для HTTPS).
	Secure bool
	// MaxAge — ограничение срока жизни сессии.
	// 0 — без ограничения: session cookie без Max-Age.
	MaxAge time.Duration
}

// setSessionCookie записывает cookie сессии в ответ.
func setSessionCookie(w http.ResponseWriter, value string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     sessionCookiePath,
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie удаляет cookie сессии (logout).
func clearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     sessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// readSessionCookie возвращает значение cookie сессии; "" если cookie нет.
func readSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// sha256Key хеширует строковый ключ в 32 bytes через SHA-256.
func sha256Key(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}
