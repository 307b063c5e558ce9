package providers

import (
	"fmt"
	"net/http"
	"sort"

	"imgrelay/pkg/apperrors"
)

// Registry хранит провайдеров по имени. После старта только читается.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register добавляет или заменяет провайдера
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get возвращает провайдера или ErrProviderNotFound
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, apperrors.ErrProviderNotFound.WithDetails(fmt.Sprintf("provider %q is not registered", name))
	}
	return p, nil
}

// Names возвращает отсортированный список имён
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildRegistry регистрирует все multipart-описания.
// Описания вида bucket пропускаются: их регистрирует app, когда настроено хранилище.
func BuildRegistry(descs []Descriptor, client *http.Client) (*Registry, error) {
	r := NewRegistry()
	for _, d := range descs {
		if d.Kind == KindBucket {
			continue
		}
		p, err := NewMultipartProvider(d, client)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}
