package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// PasswordCost は bcrypt のコスト係数です。リクエストごとに変更しません。
	PasswordCost = 12

	maxPasswordBytes = 72
)

// Hasher はパスワードのダイジェスト生成と検証を行います。
// bcrypt は CPU を多く消費するため、同時実行数をセマフォで制限します。
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher は同時実行数 maxConcurrent の Hasher を作成します。
func NewHasher(maxConcurrent int) *Hasher {
	return newHasherWithCost(PasswordCost, maxConcurrent)
}

func newHasherWithCost(cost, maxConcurrent int) *Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash はランダムなソルトで password をハッシュ化し、
// アルゴリズム・コスト・ソルトを含むダイジェスト文字列を返します。
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify は password が digest と一致するかを定数時間で比較します。
// 形式不正のダイジェストと 72 バイトを超える password は不一致です。
// 計算枠を待つ間に ctx が終了した場合だけエラーを返します。
func (h *Hasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	// bcrypt は 72 バイト目以降を無視するため、長すぎる入力は比較しない
	if len(password) > maxPasswordBytes {
		return false, nil
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil, nil
}
