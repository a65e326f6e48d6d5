package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// 分类法名称: 小写字母、数字、下划线和连字符，最长 32 个字符
	taxonomyNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
	// 词条别名: 小写字母、数字、连字符以及 URL 编码后的字符
	termSlugPattern = regexp.MustCompile(`^[a-z0-9%_-]{1,200}$`)
)

func registerRules(v *validator.Validate) {
	// 规则名固定，注册失败只可能是编程错误
	if err := v.RegisterValidation("taxonomy_name", validateTaxonomyName); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("term_slug", validateTermSlug); err != nil {
		panic(err)
	}
}

// validateTaxonomyName 验证分类法名称格式
func validateTaxonomyName(fl validator.FieldLevel) bool {
	return taxonomyNamePattern.MatchString(fl.Field().String())
}

// validateTermSlug 验证词条别名格式
func validateTermSlug(fl validator.FieldLevel) bool {
	return termSlugPattern.MatchString(fl.Field().String())
}
