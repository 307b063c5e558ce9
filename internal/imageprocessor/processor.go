package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // регистрация декодера для Dimensions
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // регистрация декодера для Dimensions
)

// Processor handles image processing operations
type Processor struct {
	quality      int // JPEG quality (1-100)
	maxDimension int // 0 = без ограничения
}

// NewProcessor creates a new image processor
func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85 // Default quality
	}
	if maxDimension < 0 {
		maxDimension = 0
	}
	return &Processor{
		quality:      quality,
		maxDimension: maxDimension,
	}
}

// Enabled reports whether downscaling is configured
func (p *Processor) Enabled() bool {
	return p != nil && p.maxDimension > 0
}

// Downscale уменьшает JPEG/PNG, если любая сторона больше maxDimension.
// Возвращает исходные байты и false, если изменений не требуется или формат не поддерживается.
func (p *Processor) Downscale(data []byte) ([]byte, bool, error) {
	if !p.Enabled() {
		return data, false, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Не картинка (или неизвестный формат) - пропускаем как есть
		return data, false, nil
	}
	if format != "jpeg" && format != "png" {
		return data, false, nil
	}
	if cfg.Width <= p.maxDimension && cfg.Height <= p.maxDimension {
		return data, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := p.resize(img, p.maxDimension, p.maxDimension)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, false, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, false, fmt.Errorf("failed to encode PNG: %w", err)
		}
	}

	return buf.Bytes(), true, nil
}

// resize resizes an image maintaining aspect ratio
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	ratio := float64(width) / float64(height)
	newWidth := maxWidth
	newHeight := maxHeight

	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}

// Dimensions returns the dimensions of an encoded image without decoding pixels
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
