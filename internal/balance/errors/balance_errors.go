package balanceerrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"休暇残日数情報の取得に失敗しました。",
		http.StatusNotFound,
	)
	ErrBalanceExceeded = apperror.New(
		apperror.CodeBalanceExceeded,
		"休暇残日数が不足しています。",
		http.StatusUnprocessableEntity,
	)
)
