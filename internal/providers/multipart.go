package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"imgrelay/internal/logger"
	"imgrelay/pkg/apperrors"
)

// maxResponseBytes ограничивает чтение ответа провайдера
const maxResponseBytes = 1 << 20

const defaultUserAgent = "imgrelay/1.0"

// MultipartProvider отправляет файл одним multipart POST на Endpoint
type MultipartProvider struct {
	desc    Descriptor
	client  *http.Client
	extract Extractor
}

// NewMultipartProvider собирает провайдер по описанию
func NewMultipartProvider(desc Descriptor, client *http.Client) (*MultipartProvider, error) {
	if desc.Endpoint == "" {
		return nil, fmt.Errorf("provider %s: endpoint is required", desc.Name)
	}
	if desc.FieldName == "" {
		return nil, fmt.Errorf("provider %s: field name is required", desc.Name)
	}
	extract, ok := LookupExtractor(desc.Response)
	if !ok {
		return nil, fmt.Errorf("provider %s: unknown response format %q", desc.Name, desc.Response)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &MultipartProvider{
		desc:    desc,
		client:  client,
		extract: extract,
	}, nil
}

func (p *MultipartProvider) Name() string {
	return p.desc.Name
}

func (p *MultipartProvider) Descriptor() Descriptor {
	return p.desc
}

// Upload выполняет ровно один запрос, без повторов
func (p *MultipartProvider) Upload(ctx context.Context, file *File) (*Links, error) {
	if p.desc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.desc.Timeout)
		defer cancel()
	}

	body, contentType, err := p.buildForm(file)
	if err != nil {
		return nil, apperrors.UnexpectedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.desc.Endpoint, body)
	if err != nil {
		return nil, apperrors.UnexpectedError(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range p.desc.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("upload timed out after %s: %w", p.desc.Timeout, err)
		}
		logger.RelayLog(p.desc.Name, p.desc.Endpoint, 0, time.Since(start), err)
		return nil, apperrors.ErrUpstreamTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	logger.RelayLog(p.desc.Name, p.desc.Endpoint, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return nil, apperrors.ErrUpstreamTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.ErrUpstreamHTTP(resp.StatusCode)
	}

	return p.extract(raw, file, p.desc)
}

// buildForm пишет форму в буфер целиком, чтобы запрос ушёл с Content-Length
func (p *MultipartProvider) buildForm(file *File) (io.Reader, string, error) {
	var buf bytes.Buffer
	if file.Size > 0 {
		buf.Grow(int(file.Size) + 512)
	}
	writer := multipart.NewWriter(&buf)

	// CreateFormFile всегда ставит application/octet-stream, нам нужен MIME картинки
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.desc.FieldName), escapeQuotes(file.Name)))
	header.Set("Content-Type", file.MimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
