// Package providers описывает внешние файлообменники, куда relay пересылает
// декодированные изображения, и то, как из их ответов достать ссылки.
package providers

import (
	"context"
	"io"
	"time"
)

// Kind - способ доставки файла провайдеру
type Kind string

const (
	KindMultipart Kind = "multipart"
	KindBucket    Kind = "bucket"
)

// Descriptor - всё, чем один провайдер отличается от другого
type Descriptor struct {
	Name              string
	Kind              Kind
	Endpoint          string
	FieldName         string
	Headers           map[string]string
	Stage             bool          // писать ли файл во временный каталог перед загрузкой
	Timeout           time.Duration // 0 = без ограничения
	DirectURLTemplate string        // fmt-шаблон "<hash>, <ext>" для прямой ссылки
	Response          string        // имя экстрактора ответа
}

// File - то, что отправляется провайдеру
type File struct {
	Name       string // имя, которое видит провайдер: upload_<ms>.<ext>
	UniqueName string // upload_<ms>_<id>.<ext>, для ключей, которые живут дольше запроса
	MimeType   string
	Extension  string
	Size       int64
	Body       io.Reader
}

// StorageName возвращает уникальное имя, если оно задано, иначе Name
func (f *File) StorageName() string {
	if f.UniqueName != "" {
		return f.UniqueName
	}
	return f.Name
}

// Links - нормализованный результат загрузки
type Links struct {
	URL     string
	Preview string
}

// Provider загружает один файл и возвращает ссылки на него
type Provider interface {
	Name() string
	Descriptor() Descriptor
	Upload(ctx context.Context, file *File) (*Links, error)
}
