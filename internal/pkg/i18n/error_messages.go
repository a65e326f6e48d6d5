// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"taxonomy-editor/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	// 1xxxxx: 通用错误码
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	// 2xxxxx: 认证
	xerrors.CodeAuthenticationFailed: {language.Chinese: "认证失败", language.English: "Authentication failed"},
	xerrors.CodeInvalidToken:         {language.Chinese: "无效令牌", language.English: "Invalid token"},

	// 3xxxxx: 权限
	xerrors.CodePermissionDenied: {language.Chinese: "权限不足", language.English: "Permission denied"},

	// 6xxxxx: 业务逻辑错误码
	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},

	// 61xxxx: 分类法 / 词条合并
	xerrors.CodeInvalidTaxonomy:          {language.Chinese: "分类法不存在", language.English: "Invalid taxonomy"},
	xerrors.CodeInvalidPrimaryTerm:       {language.Chinese: "主词条无效: 词条不存在", language.English: "Invalid primary term: Term does not exist"},
	xerrors.CodeNothingToMerge:           {language.Chinese: "过滤主词条后没有可合并的词条", language.English: "No terms to merge after filtering out the primary term"},
	xerrors.CodeTaxonomyUnresolvable:     {language.Chinese: "无法确定词条关联所属的分类法", language.English: "Could not determine taxonomy for term relationships"},
	xerrors.CodeAssociationInsertFailed:  {language.Chinese: "写入词条关联失败", language.English: "Failed to insert term relationship"},
	xerrors.CodeAssociationDeleteFailed:  {language.Chinese: "删除旧词条关联失败", language.English: "Failed to delete old term relationships"},
	xerrors.CodeReconciliationFailed:     {language.Chinese: "迁移词条关联失败", language.English: "Failed to update term relationships"},
	xerrors.CodeTermDeletionFailed:       {language.Chinese: "删除重复词条失败", language.English: "Failed to delete duplicate term"},
	xerrors.CodeMergeCommitFailed:        {language.Chinese: "合并事务提交失败", language.English: "Failed to commit term merge"},
	xerrors.CodeTermNotFound:             {language.Chinese: "词条不存在", language.English: "Term does not exist"},
	xerrors.CodeTooFewTermsSelected:      {language.Chinese: "请至少选择两个词条进行合并", language.English: "Please select at least two terms to merge."},
	xerrors.CodeInvalidBulkAction:        {language.Chinese: "无效的操作", language.English: "Invalid action"},
	xerrors.CodeTermAssignmentFailed:     {language.Chinese: "批量分配词条失败", language.English: "Failed to update post tags"},
	xerrors.CodeTermCountRecomputeFailed: {language.Chinese: "重新计算词条使用次数失败", language.English: "Failed to recompute term counts"},

	// 7xxxxx: 外部服务错误码
	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		// 如果指定语言没有翻译，返回中文（默认）
		if msg, ok := messages[language.Chinese]; ok {
			return msg
		}
	}
	// 如果完全没有定义，返回通用错误消息
	if lang == language.English {
		return "Unknown error"
	}
	return "未知错误"
}
