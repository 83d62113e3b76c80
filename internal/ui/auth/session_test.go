package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requestWithCookies создаёт запрос с cookie из ответа, как это сделал бы браузер:
// cookie с MaxAge < 0 удаляются.
func requestWithCookies(t *testing.T, w *httptest.ResponseRecorder, prev *http.Request) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	jar := map[string]*http.Cookie{}
	if prev != nil {
		for _, c := range prev.Cookies() {
			jar[c.Name] = c
		}
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = c
	}
	for _, c := range jar {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

// TestCodecEncryptDecryptRoundTrip проверяет шифрование и дешифрование payload.
func TestCodecEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := NewCookieCodec("")
	if err != nil {
		t.Fatalf("Ошибка создания CookieCodec: %v", err)
	}

	original := cookiePayload{
		SID:       "sid-1",
		IssuedAt:  time.Now().Unix(),
		Token:     "token-123",
		Role:      "Doctor",
		SubjectID: "DR-123456",
	}

	encrypted, err := codec.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	var decrypted cookiePayload
	if err := codec.Decrypt(encrypted, &decrypted); err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}
	if decrypted != original {
		t.Errorf("payload: want %+v, got %+v", original, decrypted)
	}
}

// TestCodecWithBase64Key проверяет инициализацию 32-байтовым ключом в base64.
func TestCodecWithBase64Key(t *testing.T) {
	key := "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE=" // 32 байта
	codec, err := NewCookieCodec(key)
	if err != nil {
		t.Fatalf("Ошибка создания CookieCodec: %v", err)
	}
	encrypted, err := codec.Encrypt(cookiePayload{SID: "x"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	var p cookiePayload
	if err := codec.Decrypt(encrypted, &p); err != nil || p.SID != "x" {
		t.Errorf("Decrypt = %+v, %v", p, err)
	}
}

// TestCodecDecryptWithWrongKey проверяет, что дешифрование чужим ключом не работает.
func TestCodecDecryptWithWrongKey(t *testing.T) {
	c1, _ := NewCookieCodec("key-one")
	c2, _ := NewCookieCodec("key-two")

	encrypted, err := c1.Encrypt(cookiePayload{Token: "secret"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	var p cookiePayload
	if err := c2.Decrypt(encrypted, &p); err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}
}

// TestCodecDecryptGarbage проверяет отказ на повреждённых данных.
func TestCodecDecryptGarbage(t *testing.T) {
	codec, _ := NewCookieCodec("test-key")
	var p cookiePayload
	for _, v := range []string{"%%%", "YWJj", ""} {
		if err := codec.Decrypt(v, &p); err == nil {
			t.Errorf("Decrypt(%q): ожидалась ошибка", v)
		}
	}
}

// TestPayloadExpired проверяет отказ в cookie старше MaxAge.
func TestPayloadExpired(t *testing.T) {
	now := time.Now()
	maxAge := time.Hour

	fresh := cookiePayload{IssuedAt: now.Add(-30 * time.Minute).Unix()}
	if fresh.expired(now, maxAge) {
		t.Error("свежая cookie не должна считаться просроченной")
	}
	old := cookiePayload{IssuedAt: now.Add(-2 * time.Hour).Unix()}
	if !old.expired(now, maxAge) {
		t.Error("cookie старше MaxAge должна считаться просроченной")
	}
	if !(cookiePayload{}).expired(now, maxAge) {
		t.Error("cookie без iat должна считаться просроченной")
	}
	if old.expired(now, 0) {
		t.Error("без ограничения срока жизни cookie не просрочивается")
	}
}

// TestClearSessionCookie проверяет атрибуты cookie очистки.
func TestClearSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	clearSessionCookie(w, CookieOptions{Secure: true})

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie очистки не установлен")
	}
	cookie := cookies[0]
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge: want -1, got %d", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Error("Value должен быть пустым")
	}
	if cookie.Path != "/" || !cookie.Secure {
		t.Errorf("Path=%q Secure=%v", cookie.Path, cookie.Secure)
	}
}
