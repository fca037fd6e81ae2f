package middleware

import (
	"encoding/json"
	"strings"
)

// ExtractText 从请求体中提取全部待检测文本
// 覆盖 messages（字符串或结构化 content 数组）、system、prompt
// 以及 Gemini 格式的 contents[].parts[].text，拼接为一个扁平字符串
func ExtractText(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	var texts []string

	// messages 中的文本内容
	if messages, ok := payload["messages"].([]interface{}); ok {
		for _, raw := range messages {
			msg, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			texts = append(texts, extractContent(msg["content"])...)
		}
	}

	// system prompt（字符串或结构化数组）
	texts = append(texts, extractContent(payload["system"])...)

	// prompt 字段（部分 API 格式）
	if prompt, ok := payload["prompt"].(string); ok {
		texts = append(texts, prompt)
	}

	// contents 字段（Gemini API 格式）
	if contents, ok := payload["contents"].([]interface{}); ok {
		for _, raw := range contents {
			content, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			parts, ok := content["parts"].([]interface{})
			if !ok {
				continue
			}
			for _, rawPart := range parts {
				part, ok := rawPart.(map[string]interface{})
				if !ok {
					continue
				}
				if text, ok := part["text"].(string); ok && text != "" {
					texts = append(texts, text)
				}
			}
		}
	}

	return strings.Join(texts, "\n")
}

// extractContent 提取 content 字段的文本：简单字符串或 {type:"text"} 部件数组
func extractContent(content interface{}) []string {
	switch v := content.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		var texts []string
		for _, raw := range v {
			part, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			if part["type"] != "text" {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				texts = append(texts, text)
			}
		}
		return texts
	}
	return nil
}
