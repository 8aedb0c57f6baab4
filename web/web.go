// Package web 内嵌的 HTML 模板
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates 解析全部页面模板，模板名为文件名
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}
