package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"edenhttp/internal/http/header"
	"edenhttp/internal/registry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResponse struct {
	mock.Mock
}

func (m *mockResponse) Value(key string) string {
	return m.Called(key).String(0)
}

func (m *mockResponse) Add(key string, value string) {
	m.Called(key, value)
}

func (m *mockResponse) Headers() []header.Field {
	return m.Called().Get(0).([]header.Field)
}

func (m *mockResponse) Status() int {
	return m.Called().Int(0)
}

func (m *mockResponse) Body() []byte {
	return m.Called().Get(0).([]byte)
}

func (m *mockResponse) SetBody(body []byte) {
	m.Called(body)
}

func (m *mockResponse) Finalize() []byte {
	return m.Called().Get(0).([]byte)
}

func TestResponseMiddlewares(t *testing.T) {
	tests := []struct {
		name      string
		mw        ResponseMiddleware
		wantKey   string
		wantValue string
	}{
		{
			name:      "server fingerprint",
			mw:        NewServerFingerprint("edenhttp/dev"),
			wantKey:   "Server",
			wantValue: "edenhttp/dev",
		},
		{
			name:      "connection close",
			mw:        NewConnectionClose(),
			wantKey:   "Connection",
			wantValue: "close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := new(mockResponse)
			resp.On("Add", tt.wantKey, tt.wantValue).Return()

			err := tt.mw.HandleResponse(resp)
			assert.NoError(t, err)
			resp.AssertExpectations(t)
		})
	}
}

func TestResponseMiddlewaresOnRealResponse(t *testing.T) {
	resp := header.NewResponse(200)
	require.NoError(t, NewServerFingerprint("edenhttp/dev").HandleResponse(resp))
	require.NoError(t, NewConnectionClose().HandleResponse(resp))

	assert.Equal(t, "HTTP/1.1 200 OK\r\nServer: edenhttp/dev\r\nConnection: close\r\n\r\n", string(resp.Finalize()))
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name      string
		handler   registry.Handler
		wantBody  string
		wantPanic bool
		wantErr   bool
	}{
		{
			name:     "passes through",
			handler:  func(ctx context.Context) (string, error) { return "ok", nil },
			wantBody: "ok",
		},
		{
			name:    "passes errors through",
			handler: func(ctx context.Context) (string, error) { return "", errors.New("boom") },
			wantErr: true,
		},
		{
			name: "converts panic",
			handler: func(ctx context.Context) (string, error) {
				panic("kaboom")
			},
			wantErr:   true,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Recover()("test_get", tt.handler)
			body, err := h(context.Background())
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantBody, body)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantPanic, errors.Is(err, ErrHandlerPanic))
			if tt.wantPanic {
				assert.Contains(t, err.Error(), "test_get: kaboom")
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	slow := func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	fast := func(ctx context.Context) (string, error) { return "fast", nil }

	t.Run("expires", func(t *testing.T) {
		h := Timeout(20*time.Millisecond)("slow_get", slow)
		_, err := h(context.Background())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("completes", func(t *testing.T) {
		h := Timeout(time.Second)("fast_get", fast)
		body, err := h(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "fast", body)
	})

	t.Run("disabled", func(t *testing.T) {
		h := Timeout(0)("fast_get", fast)
		body, err := h(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "fast", body)
	})

	t.Run("panicking handler", func(t *testing.T) {
		h := Timeout(time.Second)("panic_get", func(ctx context.Context) (string, error) {
			var m map[string]int
			m["boom"] = 1
			return "unreachable", nil
		})
		body, err := h(context.Background())
		assert.ErrorIs(t, err, ErrHandlerPanic)
		assert.Contains(t, err.Error(), "panic_get")
		assert.Empty(t, body)
	})
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	h := Logging(logger)("test_get", func(ctx context.Context) (string, error) { return "test", nil })
	body, err := h(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", body)
	assert.Contains(t, buf.String(), `"operation":"test_get"`)
	assert.Contains(t, buf.String(), `"body_bytes":4`)

	buf.Reset()
	h = Logging(logger)("fail_get", func(ctx context.Context) (string, error) { return "", errors.New("boom") })
	_, err = h(context.Background())
	assert.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) HandlerMiddleware {
		return func(op string, next registry.Handler) registry.Handler {
			return func(ctx context.Context) (string, error) {
				order = append(order, name)
				return next(ctx)
			}
		}
	}

	h := Chain("op", func(ctx context.Context) (string, error) {
		order = append(order, "handler")
		return "", nil
	}, mark("outer"), mark("inner"))

	_, _ = h(context.Background())
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
