package auth

import (
	"strconv"
	"testing"
	"time"
)

func TestRevocationList(t *testing.T) {
	l := NewRevocationList(time.Minute)

	if l.IsRevoked("a") {
		t.Fatal("пустой список не должен содержать a")
	}
	l.Revoke("a")
	l.Revoke("")
	if !l.IsRevoked("a") {
		t.Error("a должен быть отозван")
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, пустой id не добавляется", l.Len())
	}
}

// TestRevocationList_NoSizeEviction проверяет, что новые записи не вытесняют старые.
func TestRevocationList_NoSizeEviction(t *testing.T) {
	l := NewRevocationList(0)
	l.Revoke("first")
	for i := range 20000 {
		l.Revoke("sid-" + strconv.Itoa(i))
	}
	if !l.IsRevoked("first") {
		t.Error("первая запись вытеснена")
	}
	if l.Len() != 20001 {
		t.Errorf("Len = %d, ожидается 20001", l.Len())
	}
}

func TestRevocationList_TTL(t *testing.T) {
	l := NewRevocationList(50 * time.Millisecond)
	l.Revoke("a")
	time.Sleep(120 * time.Millisecond)
	if l.IsRevoked("a") {
		t.Error("запись должна истечь по TTL")
	}
}
