package ocr

import (
	"regexp"
	"strings"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	nonASCIIRe = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// Clean 合并空白，非 ASCII 字符替换为空格
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = spaceRe.ReplaceAllString(text, " ")
	text = nonASCIIRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
