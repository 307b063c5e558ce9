// Package datauri разбирает строки вида data:<mime>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"regexp"
	"strings"

	"imgrelay/pkg/apperrors"
)

// Pattern - допустимый формат поля file.
var Pattern = regexp.MustCompile(`^data:([A-Za-z+/-]+);base64,(.+)$`)

// DefaultExtension используется для всех подтипов вне таблицы.
const DefaultExtension = "jpg"

var passthroughExtensions = map[string]bool{
	"jpg":  true,
	"png":  true,
	"webp": true,
	"gif":  true,
}

// Asset - декодированное содержимое data URI
type Asset struct {
	MimeType  string
	Data      []byte
	Extension string
}

// Size возвращает размер декодированных данных в байтах
func (a *Asset) Size() int {
	return len(a.Data)
}

// Match проверяет формат без декодирования
func Match(s string) bool {
	return Pattern.MatchString(s)
}

// Parse разбирает и декодирует data URI.
// Пустая строка -> ErrMissingInput, несовпадение с Pattern или
// нечитаемый base64 -> ErrInvalidFormat.
func Parse(s string) (*Asset, error) {
	if s == "" {
		return nil, apperrors.ErrMissingInput
	}

	matches := Pattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		return nil, apperrors.ErrInvalidFormat
	}

	mimeType := matches[1]
	data, err := DecodeBase64(matches[2])
	if err != nil {
		return nil, apperrors.ErrInvalidFormat.WithError(err).WithDetails("base64 payload could not be decoded")
	}

	return &Asset{
		MimeType:  mimeType,
		Data:      data,
		Extension: ExtensionFromMime(mimeType),
	}, nil
}

// Encode собирает data URI из байтов (обратная операция к Parse)
func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 декодирует payload, принимая стандартный и URL-safe алфавиты,
// с паддингом и без. Пробельные символы внутри payload игнорируются.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// ExtensionFromMime выводит расширение файла из подтипа MIME.
// jpeg -> jpg, jpg/png/webp/gif без изменений, всё остальное -> jpg.
// Это политика именования, а не определение типа содержимого.
func ExtensionFromMime(mimeType string) string {
	parts := strings.SplitN(mimeType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return DefaultExtension
	}

	subtype := parts[1]
	if subtype == "jpeg" {
		return "jpg"
	}
	if passthroughExtensions[subtype] {
		return subtype
	}
	return DefaultExtension
}
