package approvalgrouperrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrGroupNotFound = apperror.New(
		apperror.CodeNotFound,
		"承認グループの取得に失敗しました。",
		http.StatusNotFound,
	)
	ErrGroupEmpty = apperror.New(
		apperror.CodeInvalidState,
		"承認グループに承認者が設定されていません。",
		http.StatusUnprocessableEntity,
	)
	ErrGroupEditForbidden = apperror.New(
		apperror.CodeForbidden,
		"承認グループを編集する権限がありません。",
		http.StatusForbidden,
	)
)
