package httpserver_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("transcript", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/v1/evaluations/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploadHandler_200(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e domain.Evaluation) bool {
		// Uploads are trimmed before scoring.
		return e.UserID == "u-7" && e.Transcript == starTranscript && e.Framework == domain.FrameworkSTAR
	})).Return("33333333-2222-4333-8444-555555555555", nil)

	w := httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "answer.txt", []byte("  "+starTranscript+"\n\n"), map[string]string{
		"user_id": "u-7", "framework": "star", "question_text": "Tell me about a recovery.",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"source":"heuristic"`)
}

func TestUploadHandler_Rejections(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.UploadHandler()(w, httptest.NewRequest(http.MethodPost, "/v1/evaluations/upload", strings.NewReader("{}")))
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-multipart")

	w = httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "", nil, map[string]string{"user_id": "u"}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing file")
	assert.Equal(t, "transcript", decodeErr(t, w).Error.Details["field"])

	w = httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "answer.exe", []byte("hello"), map[string]string{"user_id": "u"}))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code, "extension")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	w = httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "answer.txt", png, map[string]string{"user_id": "u"}))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code, "content sniffing")

	w = httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "answer.txt", []byte("hello"), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing user")
}

func TestUploadHandler_TooLarge(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	big := bytes.Repeat([]byte("a"), 200<<10)

	w := httptest.NewRecorder()
	srv.UploadHandler()(w, uploadRequest(t, "answer.txt", big, map[string]string{"user_id": "u"}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
