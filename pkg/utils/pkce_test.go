package utils

import (
	"strings"
	"testing"
)

// ==================== PKCE 单元测试 ====================

func TestGenerateRandomString_LengthAndCharset(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, length := range []int{32, 64, 128} {
		s, err := GenerateRandomString(length)
		if err != nil {
			t.Fatalf("生成随机串失败: %v", err)
		}
		if len(s) != length {
			t.Errorf("长度不符: 期望 %d, 实际 %d", length, len(s))
		}
		for _, ch := range s {
			if !strings.ContainsRune(charset, ch) {
				t.Errorf("出现字符集之外的字符: %q", ch)
			}
		}
	}
}

func TestGenerateRandomString_NotRepeating(t *testing.T) {
	a, _ := GenerateRandomString(64)
	b, _ := GenerateRandomString(64)
	if a == b {
		t.Error("两次生成的随机串不应该相同")
	}
}

// 已知向量：SHA256("test") 的 base64url (无填充) 编码
func TestGenerateCodeChallenge_KnownVector(t *testing.T) {
	got := GenerateCodeChallenge("test")
	want := "n4bQgYhMfWWaL-qgxVrQFaO_TxsrC4Is0V1sFbDwCgg"
	if got != want {
		t.Errorf("challenge 不符: 期望 %s, 实际 %s", want, got)
	}
}

// 与真实授权流程同长度 (64 位) 的已知向量
func TestGenerateCodeChallenge_FullLengthVerifier(t *testing.T) {
	verifier := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789AB"
	got := GenerateCodeChallenge(verifier)
	want := "htq-N_TkdZ6-xCztuiEXJb-0fb2Q4cba1gKWu0M5KCk"
	if got != want {
		t.Errorf("challenge 不符: 期望 %s, 实际 %s", want, got)
	}
}

func TestGenerateCodeChallenge_NoPadding(t *testing.T) {
	for _, verifier := range []string{"a", "ab", "abc", "abcd"} {
		challenge := GenerateCodeChallenge(verifier)
		if strings.ContainsAny(challenge, "=+/") {
			t.Errorf("challenge 必须是 base64url 无填充格式: %s", challenge)
		}
		if len(challenge) != 43 {
			t.Errorf("SHA256 的 base64url 编码长度应为 43, 实际 %d", len(challenge))
		}
	}
}

// ==================== 缓存测试 ====================

func TestCache_SetAndGet(t *testing.T) {
	SetCache("state-1", "verifier:100")
	defer DeleteCache("state-1")

	v, ok := GetCache("state-1")
	if !ok || v != "verifier:100" {
		t.Errorf("读取缓存失败: ok=%v, v=%s", ok, v)
	}
}

func TestCache_PopConsumesEntry(t *testing.T) {
	SetCache("state-2", "verifier:200")

	v, ok := PopCache("state-2")
	if !ok || v != "verifier:200" {
		t.Fatalf("首次 Pop 应命中: ok=%v, v=%s", ok, v)
	}

	// 取出即销毁，第二次拿不到
	if _, ok := PopCache("state-2"); ok {
		t.Error("重复 Pop 不应该再命中")
	}
}
