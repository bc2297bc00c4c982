package response

// 业务状态码（沿用 HTTP 语义，响应本身恒为 200）
const (
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
