package providers

import (
	"testing"

	"imgrelay/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quaxDescriptor() Descriptor {
	for _, d := range BuiltinDescriptors() {
		if d.Name == QuAx {
			return d
		}
	}
	panic("quax descriptor missing")
}

func TestExtractQuAx_DirectURL(t *testing.T) {
	file := &File{Extension: "png"}
	body := []byte(`{"success":true,"files":[{"url":"https://qu.ax/sgCcd","name":"upload.png"}]}`)

	links, err := extractQuAx(body, file, quaxDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "https://qu.ax/x/sgCcd.png", links.URL)
	assert.Equal(t, "https://qu.ax/sgCcd", links.Preview)
}

func TestExtractQuAx_NoTemplateKeepsPreview(t *testing.T) {
	d := quaxDescriptor()
	d.DirectURLTemplate = ""

	links, err := extractQuAx([]byte(`{"success":true,"files":[{"url":"https://qu.ax/abc"}]}`), &File{Extension: "jpg"}, d)
	require.NoError(t, err)
	assert.Equal(t, "https://qu.ax/abc", links.URL)
	assert.Equal(t, "https://qu.ax/abc", links.Preview)
}

func TestExtractors_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		extract Extractor
		body    string
		details string
	}{
		{"quax success false", extractQuAx, `{"success":false,"description":"File too big"}`, "File too big"},
		{"quax empty files", extractQuAx, `{"success":true,"files":[]}`, "Upload failed - no file URL returned"},
		{"ikram no url", extractIkram, `{"success":true}`, "Upload failed - no file URL returned"},
		{"ikram failure message", extractIkram, `{"success":false,"message":"quota"}`, "quota"},
		{"tmpfiles no file", extractTmpFiles, `{"status":"error","error":"bad file"}`, "bad file"},
		{"tmpfiles empty url", extractTmpFiles, `{"file":{"url":""}}`, "Upload failed - no file URL returned"},
		{"tmpfiles file is a string", extractTmpFiles, `{"file":"nope"}`, "Upload failed - no file URL returned"},
		{"tmpfiles top-level array", extractTmpFiles, `[]`, "Upload failed - no file URL returned"},
		{"ikram success as string", extractIkram, `{"success":"false","error":"quota"}`, "quota"},
		{"ikram url not a string", extractIkram, `{"success":true,"url":42,"message":"storage full"}`, "storage full"},
		{"quax files not a list", extractQuAx, `{"success":true,"files":{"url":"https://qu.ax/a"}}`, "Upload failed - no file URL returned"},
		{"quax success zero", extractQuAx, `{"success":0,"files":[{"url":"https://qu.ax/a"}],"error":"rate limited"}`, "rate limited"},
		{"quax null body", extractQuAx, `null`, "Upload failed - no file URL returned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.extract([]byte(tt.body), &File{Extension: "jpg"}, quaxDescriptor())
			require.Error(t, err)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeUpstreamRejected, appErr.Code)
			assert.Equal(t, tt.details, appErr.Details)
			assert.Equal(t, 500, appErr.HTTPCode)
		})
	}
}

func TestExtractors_ParseError(t *testing.T) {
	for name, extract := range extractors {
		t.Run(name, func(t *testing.T) {
			_, err := extract([]byte("<html>502 Bad Gateway</html>"), &File{}, Descriptor{})
			assert.Equal(t, apperrors.CodeUpstreamParseError, apperrors.CodeOf(err))
		})
	}
}

func TestExtractQuAx_TruthySuccess(t *testing.T) {
	links, err := extractQuAx([]byte(`{"success":1,"files":[{"url":"https://qu.ax/a"}]}`), &File{Extension: "gif"}, quaxDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "https://qu.ax/x/a.gif", links.URL)
	assert.Equal(t, "https://qu.ax/a", links.Preview)
}

func TestExtractIkram_Success(t *testing.T) {
	links, err := extractIkram([]byte(`{"success":true,"url":"https://ikram.my.id/f/1.jpg"}`), &File{}, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, &Links{URL: "https://ikram.my.id/f/1.jpg", Preview: "https://ikram.my.id/f/1.jpg"}, links)
}

func TestExtractTmpFiles_Success(t *testing.T) {
	links, err := extractTmpFiles([]byte(`{"file":{"url":"https://tmpfiles.org/123/x.png"}}`), &File{}, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, &Links{URL: "https://tmpfiles.org/123/x.png", Preview: "https://tmpfiles.org/123/x.png"}, links)
}
