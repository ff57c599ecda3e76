package utils

import (
	"strings"
	"testing"
	"time"

	"taskhub/config"
	"taskhub/models"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"short1":       false,
		"longenough":   false,
		"12345678":     false,
		"abcd1234":     true,
		"Pa55word!":    true,
		"":             false,
	}
	for pw, want := range cases {
		if got := IsStrongPassword(pw); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", pw, got, want)
		}
	}
}

type signupShape struct {
	FirstName string `validate:"required"`
	Email     string `validate:"required,mailbox"`
	Password  string `validate:"required,password"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(signupShape{FirstName: "Ada", Email: "ada@example.com", Password: "abcd1234"})
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	err = ValidateStruct(signupShape{Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"first_name is required", "email must be a valid email", "password must be at least 8 characters"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("abcd1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "abcd1234") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "abcd12345") {
		t.Error("expected mismatch")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.JWTExpire = time.Hour

	user := &models.User{}
	user.ID = 42

	token, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseJWTToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}

	config.AppConfig.JWTSecret = "rotated"
	if _, err := ParseJWTToken(token); err == nil {
		t.Error("token signed with an old secret must be rejected")
	}
}

func TestUniqueIDs(t *testing.T) {
	got := UniqueIDs([]uint{3, 0, 1, 3, 2, 1})
	want := []uint{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGenerateSlug(t *testing.T) {
	a, b := GenerateSlug(), GenerateSlug()
	if len(a) != 12 || a == b {
		t.Errorf("unexpected slugs %q %q", a, b)
	}
}

func TestAllowedUpload(t *testing.T) {
	for name, want := range map[string]bool{
		"report.PDF":  true,
		"photo.jpeg":  true,
		"archive.rar": true,
		"script.exe":  false,
		"noext":       false,
		"page.html":   false,
	} {
		if got := AllowedUpload(name); got != want {
			t.Errorf("AllowedUpload(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMimeTypeFor(t *testing.T) {
	if got := MimeTypeFor("a.pdf", ""); got != "application/pdf" {
		t.Errorf("pdf mime = %q", got)
	}
	if got := MimeTypeFor("a.bin", "image/png"); got != "image/png" {
		t.Errorf("declared mime = %q", got)
	}
}

func TestContentDisposition(t *testing.T) {
	if got := ContentDisposition("../notes.txt"); got != "attachment; filename=notes.txt" {
		t.Errorf("ContentDisposition = %q", got)
	}
}

func TestRenderNotification(t *testing.T) {
	body, err := RenderNotification("Ada", "Task Completed", `The task "<b>x</b>" has been marked as completed`)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Hello Ada") {
		t.Error("missing greeting")
	}
	if strings.Contains(body, "<b>x</b>") {
		t.Error("message must be escaped")
	}
}
