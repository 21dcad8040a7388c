package autherrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrAuthenticationFailed = apperror.New(
		apperror.CodeUnauthorized,
		"認証失敗",
		http.StatusUnauthorized,
	)
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"認証エラー",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"トークンが不正です。",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"トークンの有効期限が切れています。",
		http.StatusUnauthorized,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"この操作を行う権限がありません。",
		http.StatusForbidden,
	)
)
