// redact маскирует чувствительные данные для логов (имена входа, токены, пароли),
// сохраняя полезный для отладки контекст.
package redact

// Username маскирует имя входа: первые два символа (по рунам) + "***".
// Имена длиной ≤ 2 символа заменяются целиком.
//
// Примеры:
//
//	"martin" -> "ma***"
//	"jo"     -> "***"
func Username(s string) string {
	r := []rune(s)
	if len(r) > 2 {
		return string(r[:2]) + "***"
	}

	return "***"
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }
