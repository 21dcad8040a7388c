package applicationerrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	// ErrApplicationNotFound also covers visibility failures so callers
	// cannot probe for other users' requests.
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"申請情報の取得に失敗しました。",
		http.StatusNotFound,
	)
	ErrDuplicateApplication = apperror.New(
		apperror.CodeConflict,
		"取得日および区分が同じ申請情報が登録済みです。",
		http.StatusConflict,
	)
	ErrInvalidSubmitAction = apperror.New(
		apperror.CodeInvalidInput,
		"操作が不正です。",
		http.StatusBadRequest,
	)
	ErrNotDeletable = apperror.New(
		apperror.CodeInvalidState,
		"承認が進行しているため申請情報を削除できません。",
		http.StatusBadRequest,
	)
	ErrInvalidDateTime = apperror.New(
		apperror.CodeInvalidInput,
		"取得日時の形式が不正です。",
		http.StatusBadRequest,
	)
)
