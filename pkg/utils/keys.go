package utils

import "fmt"

func ReportCacheKey(mint string) string {
	return fmt.Sprintf("token_guard:report:%s", mint)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("token_guard:ratelimit:%s", client)
}
