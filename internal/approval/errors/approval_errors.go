package approvalerrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrApprovalTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"承認タスクの取得に失敗しました。",
		http.StatusNotFound,
	)
)
