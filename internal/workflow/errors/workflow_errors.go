package workflowerrors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrInvalidTimeOrder = apperror.New(
		apperror.CodeInvalidInput,
		"取得時間の大小関係が不正です。",
		http.StatusBadRequest,
	)
	ErrExceedsWorkday = apperror.New(
		apperror.CodeInvalidInput,
		"取得時間が不正です。※取得時間は1日の所定労働時間を超えないように入力してください。",
		http.StatusBadRequest,
	)
	ErrAllDayShapeDeclaredOther = apperror.New(
		apperror.CodeInvalidInput,
		"区分が不正です。※取得時間が区分「全日」の条件を満たしています。",
		http.StatusBadRequest,
	)
	ErrAllDayConditionNotMet = apperror.New(
		apperror.CodeInvalidInput,
		"取得時間が不正です。※取得時間が区分「全日」の条件を満たしていません。",
		http.StatusBadRequest,
	)
	ErrHalfDayAMConditionNotMet = apperror.New(
		apperror.CodeInvalidInput,
		"取得時間が不正です。※取得時間が区分「AM半休」の条件を満たしていません。",
		http.StatusBadRequest,
	)
	ErrHalfDayPMConditionNotMet = apperror.New(
		apperror.CodeInvalidInput,
		"取得時間が不正です。※取得時間が区分「PM半休」の条件を満たしていません。",
		http.StatusBadRequest,
	)
	ErrInvalidClassification = apperror.New(
		apperror.CodeInvalidInput,
		"区分が不正です。",
		http.StatusBadRequest,
	)
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"タスク情報の取得に失敗しました。",
		http.StatusNotFound,
	)
	ErrTaskNotActionable = apperror.New(
		apperror.CodeInvalidState,
		"タスクは処理済のため操作できません。",
		http.StatusBadRequest,
	)
	ErrAlreadyCancelled = apperror.New(
		apperror.CodeInvalidState,
		"申請は取消済です。",
		http.StatusBadRequest,
	)
	ErrInvalidDecisionAction = apperror.New(
		apperror.CodeInvalidInput,
		"操作が不正です。",
		http.StatusBadRequest,
	)
)
