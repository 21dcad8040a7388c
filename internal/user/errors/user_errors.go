package usererrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"ユーザ情報の取得に失敗しました。",
		http.StatusNotFound,
	)
)
