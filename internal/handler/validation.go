package handler

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 标签、活动、链接 ID 允许的字符，长度与表结构一致
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,50}$`)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册自定义规则 "identifier"
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
				return identifierPattern.MatchString(fl.Field().String())
			})
		}
	})
}

// ValidIdentifier 供表单批量编辑等非 binding 场景使用
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}
