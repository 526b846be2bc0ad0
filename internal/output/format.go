package output

import "strings"

// Format 是 --format / XCREDS_FORMAT 的取值。
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// Formats 返回全部可选格式，用于错误提示。
func Formats() []Format {
	return []Format{FormatAuto, FormatJSON, FormatYAML, FormatTable, FormatCSV}
}

func IsValid(f Format) bool {
	for _, v := range Formats() {
		if f == v {
			return true
		}
	}
	return false
}

// ParseFormat 忽略大小写与首尾空白；空串视为 auto。
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatAuto, true
	}
	return f, IsValid(f)
}
