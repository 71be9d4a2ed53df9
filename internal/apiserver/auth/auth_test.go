package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"moderation-admin/internal/shared/model"
)

func testTokenService() *TokenService {
	return NewTokenService(Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
}

// TestTokenService_AccessTokenRoundTrip 访问令牌签发后应能验证并还原声明
func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	token, err := svc.IssueAccessToken("usr-001", model.UserRoleModerator)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "usr-001" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-001")
	}
	if claims.Role != model.UserRoleModerator {
		t.Errorf("Role = %q, want %q", claims.Role, model.UserRoleModerator)
	}
	if claims.Type != "access" {
		t.Errorf("Type = %q, want %q", claims.Type, "access")
	}
}

// TestTokenService_RefreshTokenHasNoRole 刷新令牌只携带 {id}
func TestTokenService_RefreshTokenHasNoRole(t *testing.T) {
	svc := testTokenService()

	token, err := svc.IssueRefreshToken("usr-002")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Type != "refresh" {
		t.Errorf("Type = %q, want %q", claims.Type, "refresh")
	}
	if claims.Role != "" {
		t.Errorf("Role = %q, want empty", claims.Role)
	}
}

// TestTokenService_Expired 过期令牌返回 ErrTokenExpired
func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: -time.Minute, // 签发即过期
	})

	token, err := svc.IssueAccessToken("usr-003", model.UserRoleUser)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

// TestTokenService_Tampered 被篡改的令牌返回 ErrTokenInvalid
func TestTokenService_Tampered(t *testing.T) {
	svc := testTokenService()

	token, err := svc.IssueAccessToken("usr-004", model.UserRoleUser)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	// 破坏签名段
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = svc.Verify(tampered)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

// TestTokenService_WrongSecret 其他密钥签发的令牌不被接受
func TestTokenService_WrongSecret(t *testing.T) {
	other := NewTokenService(Config{JWTSecret: "other-secret", AccessTokenTTL: time.Hour})
	token, err := other.IssueAccessToken("usr-005", model.UserRoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = testTokenService().Verify(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

// TestPasswordHashing 密码哈希与验证
func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword accepted a wrong password")
	}
}
