package i18n

import (
	"context"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// 消息键
const (
	MsgTermsMerged     = "Successfully merged %d term(s) into %s."
	MsgBulkMergeResult = "%d term(s) merged."
	MsgNoPostsSelected = "No posts selected"
	MsgTagsAssigned    = "Tags assigned to %d post(s)."
	MsgTagsUnassigned  = "Tags removed from %d post(s)."
)

func init() {
	mustSet(language.English, MsgTermsMerged, plural.Selectf(1, "%d",
		plural.One, "Successfully merged %[1]d term into %[2]s.",
		plural.Other, "Successfully merged %[1]d terms into %[2]s.",
	))
	mustSet(language.English, MsgBulkMergeResult, plural.Selectf(1, "%d",
		plural.One, "%[1]d term merged.",
		plural.Other, "%[1]d terms merged.",
	))
	mustSet(language.English, MsgTagsAssigned, plural.Selectf(1, "%d",
		plural.One, "Tags assigned to %[1]d post.",
		plural.Other, "Tags assigned to %[1]d posts.",
	))
	mustSet(language.English, MsgTagsUnassigned, plural.Selectf(1, "%d",
		plural.One, "Tags removed from %[1]d post.",
		plural.Other, "Tags removed from %[1]d posts.",
	))
	mustSetString(language.English, MsgNoPostsSelected, "No posts selected")

	mustSetString(language.Chinese, MsgTermsMerged, "已成功将 %[1]d 个词条合并到 %[2]s。")
	mustSetString(language.Chinese, MsgBulkMergeResult, "已合并 %[1]d 个词条。")
	mustSetString(language.Chinese, MsgNoPostsSelected, "未选择任何内容")
	mustSetString(language.Chinese, MsgTagsAssigned, "已为 %[1]d 篇内容添加标签。")
	mustSetString(language.Chinese, MsgTagsUnassigned, "已从 %[1]d 篇内容移除标签。")
}

func mustSet(tag language.Tag, key string, msg catalog.Message) {
	if err := message.Set(tag, key, msg); err != nil {
		panic(err)
	}
}

func mustSetString(tag language.Tag, key, msg string) {
	if err := message.SetString(tag, key, msg); err != nil {
		panic(err)
	}
}

// MergeSummary 合并成功的提示信息
func MergeSummary(ctx context.Context, merged int, primaryName string) string {
	return T(ctx, MsgTermsMerged, merged, primaryName)
}
