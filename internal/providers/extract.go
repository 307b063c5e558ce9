package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"imgrelay/pkg/apperrors"
)

// Extractor превращает тело успешного (2xx) ответа провайдера в ссылки.
// Ошибки - apperrors: ErrUpstreamParse для не-JSON, ErrUpstreamRejected
// если признаков успеха нет.
type Extractor func(body []byte, file *File, d Descriptor) (*Links, error)

var extractors = map[string]Extractor{
	QuAx:     extractQuAx,
	Ikram:    extractIkram,
	TmpFiles: extractTmpFiles,
}

// LookupExtractor возвращает экстрактор по имени
func LookupExtractor(name string) (Extractor, bool) {
	e, ok := extractors[name]
	return e, ok
}

// decodeBody разбирает тело как произвольный JSON. Ошибка только для
// синтаксически неверного JSON; объект с неожиданными типами полей
// не ошибка, его отклоняют проверки конкретного провайдера.
func decodeBody(body []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apperrors.ErrUpstreamParse(err)
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// truthy - истинность значения в духе JavaScript: false, 0, "" и null ложны
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// stringField возвращает m[key], если это непустая строка
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func objectField(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

// qu.ax: {"success": true, "files": [{"url": "https://qu.ax/sgCcd", ...}]}
func extractQuAx(body []byte, file *File, d Descriptor) (*Links, error) {
	resp, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	var preview string
	if files, ok := resp["files"].([]any); ok && len(files) > 0 {
		first, _ := files[0].(map[string]any)
		preview = stringField(first, "url")
	}
	if !truthy(resp["success"]) || preview == "" {
		return nil, apperrors.ErrUpstreamRejected(upstreamMessage(body))
	}

	if d.DirectURLTemplate == "" {
		return &Links{URL: preview, Preview: preview}, nil
	}

	// https://qu.ax/sgCcd -> sgCcd -> https://qu.ax/x/sgCcd.<ext>
	hash := preview[strings.LastIndex(preview, "/")+1:]
	return &Links{
		URL:     fmt.Sprintf(d.DirectURLTemplate, hash, file.Extension),
		Preview: preview,
	}, nil
}

// ikram.my.id: {"success": true, "url": "..."}
func extractIkram(body []byte, file *File, d Descriptor) (*Links, error) {
	resp, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	url := stringField(resp, "url")
	if !truthy(resp["success"]) || url == "" {
		return nil, apperrors.ErrUpstreamRejected(upstreamMessage(body))
	}
	return &Links{URL: url, Preview: url}, nil
}

// tmpfiles.org: {"file": {"url": "..."}}
func extractTmpFiles(body []byte, file *File, d Descriptor) (*Links, error) {
	resp, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	url := stringField(objectField(resp, "file"), "url")
	if url == "" {
		return nil, apperrors.ErrUpstreamRejected(upstreamMessage(body))
	}
	return &Links{URL: url, Preview: url}, nil
}

// upstreamMessage достаёт текст ошибки провайдера, если он есть.
func upstreamMessage(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "description"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
