package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
	fields []map[string]interface{}
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
	l.fields = append(l.fields, fields)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeMalformedFilter, http.StatusBadRequest},
		{ErrCodeMalformedSort, http.StatusBadRequest},
		{ErrCodeInvalidParams, http.StatusBadRequest},
		{ErrCodeUpstream, http.StatusBadGateway},
		{ErrCodeUpstreamTimeout, http.StatusGatewayTimeout},
		{ErrCodeIncompleteExport, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	err := NewUpstreamTimeoutError(context.DeadlineExceeded)
	wrapped := fmt.Errorf("listing: %w", err)

	assert.True(t, stderrors.Is(wrapped, context.DeadlineExceeded))
	assert.Equal(t, ErrCodeUpstreamTimeout, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeUpstreamTimeout))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestWithMetadataCopies(t *testing.T) {
	base := NewIncompleteExportError(10, 20, "max iterations reached")
	extended := base.WithMetadata("index", "data_portal")

	assert.Equal(t, "data_portal", extended.Metadata["index"])
	_, ok := base.Metadata["index"]
	assert.False(t, ok)
	assert.EqualValues(t, 10, extended.Metadata["retrieved"])
}

func TestErrorHandler_WriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		wantWarn   bool
	}{
		{
			name:       "malformed filter",
			err:        NewMalformedFilterError(`segment "kingdom" has no ':' separator`),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeMalformedFilter,
			wantWarn:   true,
		},
		{
			name:       "wrapped upstream",
			err:        fmt.Errorf("summary: %w", NewUpstreamError(stderrors.New("connection refused"))),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeUpstream,
		},
		{
			name:       "plain error",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/data_portal", nil)
			h.WriteError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Error struct {
					Code    ErrorCode `json:"code"`
					Message string    `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)

			if tt.wantWarn {
				assert.Len(t, log.warns, 1)
				assert.Empty(t, log.errors)
			} else {
				assert.Len(t, log.errors, 1)
				assert.Empty(t, log.warns)
			}
			assert.Equal(t, "/data_portal", log.fields[0]["path"])
		})
	}
}
