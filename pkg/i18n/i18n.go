// Package i18n resolves response message keys against a locale catalog.
// English is the default locale; Korean is carried for parity with the
// message tables the API contract was written against.
package i18n

import (
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	once   sync.Once
	bundle *goi18n.Bundle
)

type entry struct {
	id string
	en string
	ko string
}

var catalog = []entry{
	{"success", "Success", "성공"},

	{"todo.created", "Todo created successfully", "할 일이 생성되었습니다"},
	{"todo.updated", "Todo updated successfully", "할 일이 수정되었습니다"},
	{"todo.deleted", "Todo deleted successfully", "할 일이 삭제되었습니다"},
	{"todo.retrieved", "Todo retrieved successfully", "할 일을 조회했습니다"},
	{"todo.list_retrieved", "Todo list retrieved successfully", "할 일 목록을 조회했습니다"},
	{"todo.toggled", "Todo status toggled successfully", "할 일 상태가 변경되었습니다"},

	{"user.created", "User created successfully", "사용자가 생성되었습니다"},
	{"user.updated", "User updated successfully", "사용자 정보가 수정되었습니다"},
	{"user.deleted", "User deleted successfully", "사용자가 삭제되었습니다"},
	{"user.retrieved", "User retrieved successfully", "사용자를 조회했습니다"},
	{"user.list_retrieved", "User list retrieved successfully", "사용자 목록을 조회했습니다"},

	{"auth.login_success", "Login successful", "로그인에 성공했습니다"},

	{"otp.issued", "Verification code sent", "인증 코드가 전송되었습니다"},
	{"otp.verified", "Verification code confirmed", "인증 코드가 확인되었습니다"},
	{"otp.mismatch", "The provided code is incorrect", "인증 코드가 일치하지 않습니다"},
	{"otp.not_found", "No code found for this email, or it has expired", "인증 코드가 없거나 만료되었습니다"},

	{"error.unauthorized", "Authentication required", "인증이 필요합니다"},
	{"error.invalid_credentials", "Invalid username or password", "사용자명 또는 비밀번호가 올바르지 않습니다"},
	{"error.forbidden", "Permission denied", "권한이 없습니다"},
	{"error.not_found", "Resource not found", "리소스를 찾을 수 없습니다"},
	{"error.conflict", "Resource already exists", "중복된 데이터입니다"},
	{"error.validation", "Invalid input data", "입력 데이터가 올바르지 않습니다"},
	{"error.bad_request", "Invalid request", "유효하지 않은 요청입니다"},
	{"error.internal", "Internal server error", "서버 내부 오류가 발생했습니다"},
	{"error.rate_limit", "Too many requests, please slow down", "요청이 너무 많습니다"},
}

func getBundle() *goi18n.Bundle {
	once.Do(func() {
		bundle = goi18n.NewBundle(language.English)

		en := make([]*goi18n.Message, 0, len(catalog))
		ko := make([]*goi18n.Message, 0, len(catalog))
		for _, e := range catalog {
			en = append(en, &goi18n.Message{ID: e.id, Other: e.en})
			ko = append(ko, &goi18n.Message{ID: e.id, Other: e.ko})
		}

		if err := bundle.AddMessages(language.English, en...); err != nil {
			panic(err)
		}
		if err := bundle.AddMessages(language.Korean, ko...); err != nil {
			panic(err)
		}
	})
	return bundle
}

// Localize resolves a message key for the given Accept-Language value,
// falling back to the key's English text. Unknown keys return fallback.
func Localize(acceptLanguage, key, fallback string) string {
	if key == "" {
		return fallback
	}

	localizer := goi18n.NewLocalizer(getBundle(), acceptLanguage)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return fallback
	}
	return msg
}
