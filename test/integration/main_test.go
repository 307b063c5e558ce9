package integration_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"imgrelay/internal/logger"

	"github.com/gin-gonic/gin"
)

const pngDataURI = "data:image/png;base64,cmVsYXkgbWU=" // "relay me"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if os.Getenv("TEST_LOGS") == "" {
		logger.SetLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	} else {
		logger.Init("development")
	}

	os.Exit(m.Run())
}
