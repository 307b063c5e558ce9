package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"imgrelay/internal/datauri"
	"imgrelay/internal/providers"
	"imgrelay/internal/services/dto"
	"imgrelay/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000).UTC() }

// memoryBucket - потокобезопасный storage.Storage в памяти
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryBucket) Save(_ context.Context, path string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *memoryBucket) Get(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[path])), nil
}

func (m *memoryBucket) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memoryBucket) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memoryBucket) GetURL(_ context.Context, path string) (string, error) {
	return "https://cdn.example/" + path, nil
}

func TestRelay_SameMillisecondBucketKeysDiffer(t *testing.T) {
	bucket := &memoryBucket{objects: map[string][]byte{}}

	registry := providers.NewRegistry()
	registry.Register(providers.NewBucketProvider("bucket", bucket))

	svc := NewRelayService(RelayConfig{Registry: registry, DefaultProvider: "bucket"}).(*relayService)
	svc.now = fixedNow

	alice, err := svc.Relay(context.Background(), "", &dto.RelayRequest{File: datauri.Encode("image/png", []byte("alice-private"))})
	require.NoError(t, err)
	bob, err := svc.Relay(context.Background(), "", &dto.RelayRequest{File: datauri.Encode("image/png", []byte("bob"))})
	require.NoError(t, err)

	assert.NotEqual(t, alice.URL, bob.URL)
	assert.Regexp(t, `^https://cdn\.example/relay/\d{4}/\d{2}/upload_1700000000000_[0-9a-f]{12}\.png$`, alice.URL)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.Len(t, bucket.objects, 2)

	stored := map[string]bool{}
	for _, data := range bucket.objects {
		stored[string(data)] = true
	}
	assert.Equal(t, map[string]bool{"alice-private": true, "bob": true}, stored)
}

func TestRelay_ConcurrentStagedUploadsInSameMillisecond(t *testing.T) {
	dir := t.TempDir()

	// Апстрим держит оба запроса, пока не придут оба: staging-файлы
	// обоих запросов в этот момент лежат в каталоге одновременно
	var (
		arrived   sync.WaitGroup
		mu        sync.Mutex
		maxStaged int
	)
	arrived.Add(2)
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		arrived.Done()

		select {
		case <-allArrived:
		case <-time.After(5 * time.Second):
		}

		if entries, err := os.ReadDir(dir); err == nil {
			mu.Lock()
			if len(entries) > maxStaged {
				maxStaged = len(entries)
			}
			mu.Unlock()
		}
		_, _ = io.WriteString(w, `{"success":true,"url":"https://ikram.my.id/f/1.png"}`)
	}))
	defer upstream.Close()

	desc := builtin(t, providers.Ikram)
	desc.Endpoint = upstream.URL
	p, err := providers.NewMultipartProvider(desc, upstream.Client())
	require.NoError(t, err)

	registry := providers.NewRegistry()
	registry.Register(p)

	scratch, err := storage.NewLocalStorage(storage.Config{BasePath: dir})
	require.NoError(t, err)

	svc := NewRelayService(RelayConfig{Registry: registry, Scratch: scratch, DefaultProvider: providers.Ikram}).(*relayService)
	svc.now = fixedNow

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Relay(context.Background(), "", &dto.RelayRequest{File: pngDataURI})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	mu.Lock()
	assert.Equal(t, 2, maxStaged, "both requests staged their own file")
	mu.Unlock()
	assertScratchEmpty(t, dir)
}
