package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"imgrelay/internal/app"
	"imgrelay/internal/config"
)

type TestServer struct {
	Server     *httptest.Server
	Upstream   *FakeUpstream
	Config     *config.Config
	ScratchDir string
}

// NewTestServer поднимает приложение, у которого все встроенные провайдеры
// смотрят в FakeUpstream. mutate может поправить конфиг до сборки роутера.
func NewTestServer(t *testing.T, mutate ...func(*config.Config)) *TestServer {
	t.Helper()

	upstream := NewFakeUpstream(t)

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Relay.ScratchDir = t.TempDir()
	cfg.Providers = []config.ProviderConfig{
		{Name: "quax", Endpoint: upstream.URL("/quax")},
		{Name: "ikram", Endpoint: upstream.URL("/ikram")},
		{Name: "tmpfiles", Endpoint: upstream.URL("/tmpfiles")},
	}
	for _, m := range mutate {
		m(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router, err := app.NewRouter(ctx, cfg, upstream.Server.Client())
	if err != nil {
		t.Fatalf("Не удалось собрать приложение: %v", err)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:     server,
		Upstream:   upstream,
		Config:     cfg,
		ScratchDir: cfg.Relay.ScratchDir,
	}
}

// SendRequest отправляет JSON (или сырую строку) и возвращает ответ с телом
func (ts *TestServer) SendRequest(t *testing.T, method, path string, body interface{}) (*http.Response, string) {
	t.Helper()
	url := ts.Server.URL + path

	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}

	return res, string(resBodyBytes)
}
