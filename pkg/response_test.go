package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteTextResponseOK(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteTextResponseOK(rr, "I'm OK, thanks ;)")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentType.Text, rr.Header().Get("Content-Type"))
	assert.Equal(t, "I'm OK, thanks ;)", rr.Body.String())
}

func TestWriteJSONResponseOK(t *testing.T) {
	rr := httptest.NewRecorder()
	tokenResp := `{"token": "test-token-1748000000123-x7Gh2kLm9q"}`
	WriteJSONResponseOK(rr, tokenResp)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, tokenResp, rr.Body.String())
}

func TestWriteResponseBytesOK(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteResponseBytesOK(rr, ContentType.JSON, []byte(`{"id":"course-1"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":"course-1"}`, rr.Body.String())
}

func TestWriteResponse_ErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteResponse(rr, ContentType.JSON, `{"error":"day 42 not found in marathon"}`, http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"error":"day 42 not found in marathon"}`, rr.Body.String())
}

func TestWriteResponseBytes_NoContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteResponseBytes(rr, "", []byte("accepted"), http.StatusAccepted)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Type"))
	assert.Equal(t, "accepted", rr.Body.String())
}
