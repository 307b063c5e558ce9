package helpers

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// UploadCall - то, что фейковый провайдер получил в одном запросе
type UploadCall struct {
	Path        string
	Field       string
	FileName    string
	ContentType string
	Referer     string
	Data        []byte
}

// Reply - ответ фейкового провайдера
type Reply struct {
	Status int
	Body   string
}

// FakeUpstream изображает qu.ax, ikram.my.id и tmpfiles.org на путях
// /quax, /ikram и /tmpfiles одного httptest-сервера.
type FakeUpstream struct {
	Server *httptest.Server

	mu      sync.Mutex
	replies map[string]Reply
	calls   []UploadCall
}

// DefaultReplies - успешные ответы в формате настоящих провайдеров
func DefaultReplies() map[string]Reply {
	return map[string]Reply{
		"/quax":     {Status: http.StatusOK, Body: `{"success":true,"files":[{"url":"https://qu.ax/sgCcd"}]}`},
		"/ikram":    {Status: http.StatusOK, Body: `{"success":true,"url":"https://ikram.my.id/f/abc.png"}`},
		"/tmpfiles": {Status: http.StatusOK, Body: `{"status":"success","file":{"url":"https://tmpfiles.org/123/x.png"}}`},
	}
}

func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()

	u := &FakeUpstream{replies: DefaultReplies()}
	u.Server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.Server.Close)
	return u
}

// SetReply меняет ответ для пути
func (u *FakeUpstream) SetReply(path string, status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.replies[path] = Reply{Status: status, Body: body}
}

// Calls возвращает копию полученных запросов
func (u *FakeUpstream) Calls() []UploadCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]UploadCall, len(u.calls))
	copy(out, u.calls)
	return out
}

func (u *FakeUpstream) URL(path string) string {
	return u.Server.URL + path
}

func (u *FakeUpstream) handle(w http.ResponseWriter, r *http.Request) {
	call := UploadCall{Path: r.URL.Path, Referer: r.Header.Get("Referer")}

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && params["boundary"] != "" {
		reader := multipart.NewReader(r.Body, params["boundary"])
		if part, err := reader.NextPart(); err == nil {
			call.Field = part.FormName()
			call.FileName = part.FileName()
			call.ContentType = part.Header.Get("Content-Type")
			call.Data, _ = io.ReadAll(part)
		}
	}

	u.mu.Lock()
	u.calls = append(u.calls, call)
	reply, ok := u.replies[r.URL.Path]
	u.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}
