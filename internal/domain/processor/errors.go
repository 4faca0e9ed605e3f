package processor

import (
	"errors"
	"fmt"
)

// Category プロセッサ起因エラーの分類
type Category string

const (
	// CategoryValidation 入力不正（リトライしない、呼び出し元に即時返す）
	CategoryValidation Category = "validation"
	// CategoryAuthentication 認証情報不正（リトライしない、設定の修正が必要）
	CategoryAuthentication Category = "authentication"
	// CategorySignature 署名検証失敗（フェイルクローズ、不正の兆候としてログ）
	CategorySignature Category = "signature_verification"
	// CategoryRejected プロセッサによる4xx拒否（リトライしない）
	CategoryRejected Category = "processor_rejected"
	// CategoryTransient 一時的なネットワーク障害（1回だけリトライ可）
	CategoryTransient Category = "transient_network"
)

// Error プロセッサ起因のエラー
// 生のレスポンスボディは保持しない（ステータスと安定したコードのみ）
type Error struct {
	Category   Category
	Code       string
	StatusCode int
	Message    string
}

// Error エラーメッセージを返す
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("processor %s error: %s (status %d)", e.Category, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("processor %s error: %s", e.Category, e.Code)
}

// NewError 新しいErrorを作成
func NewError(category Category, code string, statusCode int, message string) *Error {
	return &Error{
		Category:   category,
		Code:       code,
		StatusCode: statusCode,
		Message:    message,
	}
}

// AsError errをErrorに変換する（変換できない場合はnil）
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// IsCategory errが指定した分類のプロセッサエラーかどうかを返す
func IsCategory(err error, category Category) bool {
	pe := AsError(err)
	return pe != nil && pe.Category == category
}

// IsTransient 一時的なネットワーク障害かどうかを返す
func IsTransient(err error) bool {
	return IsCategory(err, CategoryTransient)
}

// IsRejected プロセッサによる拒否かどうかを返す
func IsRejected(err error) bool {
	return IsCategory(err, CategoryRejected)
}

// IsAuthentication 認証エラーかどうかを返す
func IsAuthentication(err error) bool {
	return IsCategory(err, CategoryAuthentication)
}
