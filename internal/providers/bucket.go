package providers

import (
	"context"
	"path"
	"time"

	"imgrelay/internal/storage"
	"imgrelay/pkg/apperrors"
)

// BucketProvider кладёт файл в S3/R2 и отдаёт публичную ссылку на объект
type BucketProvider struct {
	name    string
	storage storage.Storage
	prefix  string
	now     func() time.Time
}

// NewBucketProvider создаёт провайдер поверх объектного хранилища
func NewBucketProvider(name string, store storage.Storage) *BucketProvider {
	return &BucketProvider{
		name:    name,
		storage: store,
		prefix:  "relay",
		now:     time.Now,
	}
}

func (p *BucketProvider) Name() string {
	return p.name
}

func (p *BucketProvider) Descriptor() Descriptor {
	return Descriptor{Name: p.name, Kind: KindBucket}
}

// Key возвращает ключ объекта: relay/<yyyy>/<mm>/<имя файла>.
// Имя должно быть уникальным, иначе объект перезаписывается.
func (p *BucketProvider) Key(fileName string) string {
	return path.Join(p.prefix, p.now().UTC().Format("2006/01"), fileName)
}

func (p *BucketProvider) Upload(ctx context.Context, file *File) (*Links, error) {
	key := p.Key(file.StorageName())

	if err := p.storage.Save(ctx, key, file.Body, file.MimeType); err != nil {
		return nil, apperrors.ErrUpstreamTransport(err)
	}

	url, err := p.storage.GetURL(ctx, key)
	if err != nil {
		return nil, apperrors.UnexpectedError(err)
	}
	return &Links{URL: url, Preview: url}, nil
}
