package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runMiddleware(secret, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired(secret)(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := runMiddleware("test-secret", tt.authHeader)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_MissingSecret はシークレット未設定の場合に500が返されることを検証します。
func TestAuthRequired_MissingSecret(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware("", "Bearer sometoken")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ・subject不正等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	t.Parallel()

	const testSecret = "test-secret-key-for-invalid"

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", createTokenWithSecret("wrong-secret", 1, time.Hour)},
		{"expired token", createTokenWithSecret(testSecret, 1, -time.Hour)},
		{"zero subject", createTokenWithSecret(testSecret, 0, time.Hour)},
		{"missing subject", createTokenWithClaims(testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})},
		{"string subject", createTokenWithClaims(testSecret, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Hour).Unix()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := runMiddleware(testSecret, "Bearer "+tt.token)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if _, ok := UserID(c); ok {
				t.Error("expected no user in context")
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにユーザーIDが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	t.Parallel()

	const testSecret = "test-secret-key-for-valid"

	for _, userID := range []uint{1, 42, 999} {
		token := createTokenWithSecret(testSecret, userID, time.Hour)

		w, c := runMiddleware(testSecret, "Bearer "+token)

		if c.IsAborted() {
			t.Errorf("expected request not to be aborted, response: %s", w.Body.String())
			continue
		}
		got, ok := UserID(c)
		if !ok {
			t.Error("expected userID to be set in context")
			continue
		}
		if got != userID {
			t.Errorf("expected userID %d, got %d", userID, got)
		}
	}
}

// TestAuthRequired_GeneratorRoundTrip はGeneratorが発行したトークンをミドルウェアが受け入れることを検証します。
func TestAuthRequired_GeneratorRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := NewGenerator("round-trip", time.Hour).GenerateToken(7, "trader@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, c := runMiddleware("round-trip", "Bearer "+token)

	if got, ok := UserID(c); !ok || got != 7 {
		t.Errorf("expected userID 7, got %d (ok=%v)", got, ok)
	}
}

// TestAuthRequired_InvalidSigningMethod はnoneアルゴリズム（未署名）のトークンが拒否されることを検証します。
func TestAuthRequired_InvalidSigningMethod(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": float64(1),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenStr, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	w, _ := runMiddleware("test-secret-key-for-signing", "Bearer "+tokenStr)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestUserID_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := UserID(c); ok {
		t.Error("expected no user id")
	}
}

// createTokenWithSecret はテスト用に指定されたシークレットとユーザーIDで署名済みJWTトークンを生成します。
func createTokenWithSecret(secret string, userID uint, expiration time.Duration) string {
	return createTokenWithClaims(secret, jwt.MapClaims{
		"sub":   float64(userID),
		"exp":   time.Now().Add(expiration).Unix(),
		"iat":   time.Now().Unix(),
		"email": "test@example.com",
	})
}

func createTokenWithClaims(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}
