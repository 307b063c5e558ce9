package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"imgrelay/internal/datauri"
	"imgrelay/internal/imageprocessor"
	"imgrelay/internal/logger"
	"imgrelay/internal/providers"
	"imgrelay/internal/services/dto"
	"imgrelay/internal/storage"
	"imgrelay/pkg/apperrors"

	"github.com/google/uuid"
)

// ============================================
// RELAY SERVICE
// ============================================

type RelayService interface {
	// Декодирует data URI и загружает его указанному провайдеру
	Relay(ctx context.Context, provider string, req *dto.RelayRequest) (*dto.RelayResponse, error)

	// Список зарегистрированных провайдеров
	Providers() *dto.ProvidersResponse

	// Провайдер для POST /api/upload
	DefaultProvider() string
}

type relayService struct {
	registry        *providers.Registry
	scratch         storage.Storage
	processor       *imageprocessor.Processor
	recorder        EventRecorder
	defaultProvider string
	now             func() time.Time
}

// RelayConfig - зависимости RelayService
type RelayConfig struct {
	Registry        *providers.Registry
	Scratch         storage.Storage // временный каталог для провайдеров со stage
	Processor       *imageprocessor.Processor
	Recorder        EventRecorder
	DefaultProvider string
}

func NewRelayService(cfg RelayConfig) RelayService {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NopRecorder
	}
	defaultProvider := cfg.DefaultProvider
	if defaultProvider == "" {
		defaultProvider = providers.QuAx
	}
	return &relayService{
		registry:        cfg.Registry,
		scratch:         cfg.Scratch,
		processor:       cfg.Processor,
		recorder:        recorder,
		defaultProvider: defaultProvider,
		now:             time.Now,
	}
}

func (s *relayService) DefaultProvider() string {
	return s.defaultProvider
}

func (s *relayService) Providers() *dto.ProvidersResponse {
	return &dto.ProvidersResponse{
		Providers: s.registry.Names(),
		Default:   s.defaultProvider,
	}
}

// Relay - весь конвейер: провайдер -> декодирование -> (уменьшение) -> (staging) -> загрузка
func (s *relayService) Relay(ctx context.Context, providerName string, req *dto.RelayRequest) (*dto.RelayResponse, error) {
	if providerName == "" {
		providerName = s.defaultProvider
	}
	ctx = logger.WithProvider(ctx, providerName)

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	links, err := s.relay(ctx, provider, req)
	if err != nil {
		s.recorder.Record(ctx, RelayEvent{
			Kind:     EventFailed,
			Provider: providerName,
			Code:     string(apperrors.CodeOf(err)),
			Err:      err,
		})
		return nil, err
	}

	return &dto.RelayResponse{
		Success: true,
		URL:     links.URL,
		Preview: links.Preview,
	}, nil
}

func (s *relayService) relay(ctx context.Context, provider providers.Provider, req *dto.RelayRequest) (*providers.Links, error) {
	if req == nil || req.File == "" {
		return nil, apperrors.ErrMissingInput
	}

	asset, err := datauri.Parse(req.File)
	if err != nil {
		return nil, err
	}

	data, err := s.downscale(ctx, asset)
	if err != nil {
		return nil, err
	}
	asset.Data = data

	s.recordDecoded(ctx, provider.Name(), asset)

	now := s.now()
	// Уникальное имя: scratch-файл и ключ в bucket не пересекаются
	// у запросов из одной миллисекунды
	uniqueName := fmt.Sprintf("upload_%d_%s.%s", now.UnixMilli(), shortID(), asset.Extension)
	file := &providers.File{
		Name:       fmt.Sprintf("upload_%d.%s", now.UnixMilli(), asset.Extension),
		UniqueName: uniqueName,
		MimeType:   asset.MimeType,
		Extension:  asset.Extension,
		Size:       int64(asset.Size()),
		Body:       bytes.NewReader(asset.Data),
	}

	if provider.Descriptor().Stage && s.scratch != nil {
		body, err := s.stage(ctx, provider.Name(), uniqueName, asset)
		if err != nil {
			return nil, err
		}
		// Файл удаляется на любом пути выхода; ошибка удаления только логируется
		defer s.cleanup(ctx, uniqueName)
		defer body.Close()

		file.Body = body
	}

	start := time.Now()
	links, err := provider.Upload(ctx, file)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, RelayEvent{
		Kind:     EventUploaded,
		Provider: provider.Name(),
		Size:     asset.Size(),
		Duration: time.Since(start),
	})
	return links, nil
}

func (s *relayService) downscale(ctx context.Context, asset *datauri.Asset) ([]byte, error) {
	if !s.processor.Enabled() {
		return asset.Data, nil
	}

	data, changed, err := s.processor.Downscale(asset.Data)
	if err != nil {
		return nil, apperrors.UnexpectedError(err)
	}
	if changed {
		logger.CtxDebug(ctx, "Image downscaled", "before", len(asset.Data), "after", len(data))
	}
	return data, nil
}

// stage пишет файл в scratch и открывает его на чтение
func (s *relayService) stage(ctx context.Context, providerName, name string, asset *datauri.Asset) (io.ReadCloser, error) {
	if err := s.scratch.Save(ctx, name, bytes.NewReader(asset.Data), asset.MimeType); err != nil {
		return nil, apperrors.UnexpectedError(fmt.Errorf("failed to write scratch file: %w", err))
	}

	body, err := s.scratch.Get(ctx, name)
	if err != nil {
		s.cleanup(ctx, name)
		return nil, apperrors.UnexpectedError(fmt.Errorf("failed to open scratch file: %w", err))
	}

	s.recorder.Record(ctx, RelayEvent{
		Kind:     EventStaged,
		Provider: providerName,
		Path:     name,
		Size:     asset.Size(),
	})
	return body, nil
}

func (s *relayService) cleanup(ctx context.Context, name string) {
	// Контекст запроса мог быть отменён, удаление всё равно должно пройти
	if err := s.scratch.Delete(context.WithoutCancel(ctx), name); err != nil {
		s.recorder.Record(ctx, RelayEvent{
			Kind: EventCleanupFailed,
			Path: name,
			Err:  err,
		})
	}
}

func (s *relayService) recordDecoded(ctx context.Context, providerName string, asset *datauri.Asset) {
	event := RelayEvent{
		Kind:      EventDecoded,
		Provider:  providerName,
		MimeType:  asset.MimeType,
		Extension: asset.Extension,
		Size:      asset.Size(),
	}
	if w, h, err := imageprocessor.Dimensions(asset.Data); err == nil {
		event.Width, event.Height = w, h
	}
	s.recorder.Record(ctx, event)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
