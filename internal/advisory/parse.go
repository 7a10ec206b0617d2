package advisory

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("response contains no JSON object")

// ExtractJSON 从外部服务返回的文本中提取 JSON 对象
// 模型输出可能带 markdown 代码块标记或 <think> 推理前缀,
// 统一取第一个 '{' 与最后一个 '}' 之间的子串并校验合法性
func ExtractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	// 去掉代码块围栏
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", errNoJSONObject
	}
	cleaned = cleaned[start : end+1]

	if !json.Valid([]byte(cleaned)) {
		return "", errors.New("extracted text is not valid JSON")
	}
	return cleaned, nil
}
