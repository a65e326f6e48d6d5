// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 错误码按领域分段
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	// 2xxxxx: 认证相关错误码
	CodeAuthenticationFailed ErrorCode = 200001 // 认证失败
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌

	// 3xxxxx: 权限相关错误码
	CodePermissionDenied ErrorCode = 300001 // 权限不足

	// 6xxxxx: 业务逻辑错误码
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许

	// 61xxxx: 分类法 / 词条合并
	CodeInvalidTaxonomy          ErrorCode = 610001 // 分类法不存在
	CodeInvalidPrimaryTerm       ErrorCode = 610002 // 主词条无效
	CodeNothingToMerge           ErrorCode = 610003 // 没有可合并的词条
	CodeTaxonomyUnresolvable     ErrorCode = 610004 // 无法确定关联所属分类法
	CodeAssociationInsertFailed  ErrorCode = 610005 // 写入关联失败
	CodeAssociationDeleteFailed  ErrorCode = 610006 // 删除旧关联失败
	CodeReconciliationFailed     ErrorCode = 610007 // 关联迁移失败
	CodeTermDeletionFailed       ErrorCode = 610008 // 删除重复词条失败
	CodeMergeCommitFailed        ErrorCode = 610009 // 合并事务提交失败
	CodeTermNotFound             ErrorCode = 610010 // 词条不存在
	CodeTooFewTermsSelected      ErrorCode = 610011 // 至少选择两个词条
	CodeInvalidBulkAction        ErrorCode = 610012 // 不支持的批量操作
	CodeTermAssignmentFailed     ErrorCode = 610013 // 批量分配词条失败
	CodeTermCountRecomputeFailed ErrorCode = 610014 // 重新计算使用次数失败

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误
)

// -----------------------------------------------------------------------------
// HTTP 状态码常量定义
// -----------------------------------------------------------------------------
const (
	HTTPStatusOK = 200 // 请求成功

	HTTPStatusBadRequest          = 400 // 错误请求
	HTTPStatusUnauthorized        = 401 // 未经授权
	HTTPStatusForbidden           = 403 // 禁止访问
	HTTPStatusNotFound            = 404 // 资源未找到
	HTTPStatusConflict            = 409 // 资源冲突
	HTTPStatusUnprocessableEntity = 422 // 无法处理的实体
	HTTPStatusTooManyRequests     = 429 // 请求过多

	HTTPStatusInternalServerError = 500 // 内部服务器错误
	HTTPStatusServiceUnavailable  = 503 // 服务不可用
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeAuthenticationFailed: "认证失败",
	CodeInvalidToken:         "无效令牌",

	CodePermissionDenied: "权限不足",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",

	CodeInvalidTaxonomy:          "分类法不存在",
	CodeInvalidPrimaryTerm:       "主词条无效",
	CodeNothingToMerge:           "没有可合并的词条",
	CodeTaxonomyUnresolvable:     "无法确定关联所属的分类法",
	CodeAssociationInsertFailed:  "写入词条关联失败",
	CodeAssociationDeleteFailed:  "删除旧词条关联失败",
	CodeReconciliationFailed:     "迁移词条关联失败",
	CodeTermDeletionFailed:       "删除重复词条失败",
	CodeMergeCommitFailed:        "提交合并事务失败",
	CodeTermNotFound:             "词条不存在",
	CodeTooFewTermsSelected:      "请至少选择两个词条进行合并",
	CodeInvalidBulkAction:        "不支持的批量操作",
	CodeTermAssignmentFailed:     "批量更新内容词条失败",
	CodeTermCountRecomputeFailed: "重新计算词条使用次数失败",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch {
	case code == CodeSuccess:
		return HTTPStatusOK
	case code == CodeAuthenticationFailed || code == CodeInvalidToken:
		return HTTPStatusUnauthorized
	case code >= 300000 && code < 400000:
		return HTTPStatusForbidden
	case code == CodeResourceNotFound || code == CodeTermNotFound || code == CodeInvalidPrimaryTerm:
		return HTTPStatusNotFound
	case code == CodeDuplicateResource:
		return HTTPStatusConflict
	case code == CodeInvalidParams || code == CodeInvalidRequest:
		return HTTPStatusBadRequest
	case code == CodeRateLimitExceeded:
		return HTTPStatusTooManyRequests
	case code == CodeNothingToMerge:
		return HTTPStatusUnprocessableEntity
	case code == CodeInvalidTaxonomy || code == CodeTooFewTermsSelected || code == CodeInvalidBulkAction:
		return HTTPStatusBadRequest
	case code >= 610000 && code < 620000:
		// 合并过程中的存储错误
		return HTTPStatusInternalServerError
	case code >= 600000 && code < 700000:
		return HTTPStatusBadRequest
	case code >= 700000:
		return HTTPStatusServiceUnavailable
	default:
		return HTTPStatusInternalServerError
	}
}

// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 610000 && code < 620000:
		return "taxonomy"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "external"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code >= 100001 && code <= 100003:
		return LevelWarn
	case code == CodeInvalidTaxonomy, code == CodeInvalidPrimaryTerm, code == CodeNothingToMerge,
		code == CodeTermNotFound, code == CodeTooFewTermsSelected, code == CodeInvalidBulkAction:
		return LevelWarn
	case code == CodeTaxonomyUnresolvable:
		// 关联指向不存在的分类法，说明存储已损坏
		return LevelCritical
	case code >= 700001:
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		CodeInternalError:        true,
		CodeExternalServiceError: true,
		CodeDatabaseError:        true,
		CodeCacheError:           true,
		CodeMessageQueueError:    true,
		CodeRateLimitExceeded:    true,
		CodeMergeCommitFailed:    true,
	}
	return retryableCodes[code]
}
