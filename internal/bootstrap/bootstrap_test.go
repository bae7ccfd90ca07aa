package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"edenhttp/internal/registry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) HTTPPort() string              { return m.Called().String(0) }
func (m *MockConfig) SchemaPath() string            { return m.Called().String(0) }
func (m *MockConfig) APITitle() string              { return m.Called().String(0) }
func (m *MockConfig) MaxHeaderBytes() int           { return m.Called().Int(0) }
func (m *MockConfig) MaxBodyBytes() int64           { return m.Called().Get(0).(int64) }
func (m *MockConfig) ReadTimeout() time.Duration    { return m.Called().Get(0).(time.Duration) }
func (m *MockConfig) HandlerTimeout() time.Duration { return m.Called().Get(0).(time.Duration) }
func (m *MockConfig) RateLimit() float64            { return m.Called().Get(0).(float64) }
func (m *MockConfig) RateBurst() int                { return m.Called().Int(0) }
func (m *MockConfig) MetricsEnabled() bool          { return m.Called().Bool(0) }
func (m *MockConfig) MetricsPort() string           { return m.Called().String(0) }
func (m *MockConfig) PprofEnabled() bool            { return m.Called().Bool(0) }
func (m *MockConfig) PprofPort() string             { return m.Called().String(0) }
func (m *MockConfig) LogLevel() zerolog.Level       { return m.Called().Get(0).(zerolog.Level) }
func (m *MockConfig) LogFormat() string             { return m.Called().String(0) }

func newMockConfig(httpPort string) *MockConfig {
	mockConfig := &MockConfig{}
	mockConfig.On("HTTPPort").Return(httpPort)
	mockConfig.On("SchemaPath").Return("/schema/")
	mockConfig.On("APITitle").Return("edenhttp")
	mockConfig.On("MaxHeaderBytes").Return(8192)
	mockConfig.On("MaxBodyBytes").Return(int64(1024))
	mockConfig.On("ReadTimeout").Return(time.Second)
	mockConfig.On("HandlerTimeout").Return(time.Duration(0))
	mockConfig.On("RateLimit").Return(float64(0))
	mockConfig.On("RateBurst").Return(0)
	mockConfig.On("LogLevel").Return(zerolog.InfoLevel)
	mockConfig.On("LogFormat").Return("json")
	return mockConfig
}

func randomAvailablePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	mPort := listener.Addr().(*net.TCPAddr).Port
	return strconv.Itoa(mPort), nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		setups      []RouteSetup
		wantErr     bool
		errContains string
	}{
		{
			name:   "builtin routes",
			setups: []RouteSetup{BuiltinRoutes},
		},
		{
			name:   "no application routes",
			setups: nil,
		},
		{
			name: "setup error",
			setups: []RouteSetup{func(reg registry.Registry) error {
				return errors.New("bad route table")
			}},
			wantErr:     true,
			errContains: "register routes: bad route table",
		},
		{
			name: "application claims the schema path",
			setups: []RouteSetup{func(reg registry.Registry) error {
				_, err := reg.Register("/schema/", "GET", "mine", ping)
				return err
			}},
			wantErr:     true,
			errContains: "register schema route",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(newMockConfig("0"), zerolog.Nop(), tt.setups...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, b.Registry)
			assert.NotNil(t, b.Metrics)
			assert.NotNil(t, b.ErrChan)
			assert.NotNil(t, b.SignalChan)

			_, ok := b.Registry.Lookup("/schema/", "GET")
			assert.True(t, ok)

			_, err = b.Registry.Register("/late/", "GET", "late", ping)
			assert.ErrorIs(t, err, registry.ErrFrozen)
		})
	}
}

func TestBuiltinRoutes(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, BuiltinRoutes(reg))

	route, ok := reg.Lookup("/ping/", "GET")
	require.True(t, ok)
	assert.Equal(t, "ping_get", route.OperationID)
	body, err := route.Handler(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", body)

	route, ok = reg.Lookup("/version/", "GET")
	require.True(t, ok)
	body, err = route.Handler(context.Background())
	require.NoError(t, err)
	assert.Contains(t, body, `"version":`)

	assert.Error(t, BuiltinRoutes(reg))
}

func TestNewLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.WarnLevel, "json")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	buf.Reset()
	console := NewLogger(&buf, zerolog.InfoLevel, "console")
	console.Info().Msg("pretty")
	assert.Contains(t, buf.String(), "pretty")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNewSideServer(t *testing.T) {
	mockConfig := newMockConfig("0")
	b, err := New(mockConfig, zerolog.Nop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv := b.newSideServer("localhost:0", mux)
	assert.Equal(t, "localhost:0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
	assert.Same(t, mux, srv.Handler)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		setupConfig func() *MockConfig
		expectError bool
		probe       func(t *testing.T, conf *MockConfig)
	}{
		{
			name: "successful run and termination",
			setupConfig: func() *MockConfig {
				mockConfig := newMockConfig("0")
				mockConfig.On("MetricsEnabled").Return(false)
				mockConfig.On("PprofEnabled").Return(false)
				return mockConfig
			},
		},
		{
			name: "error from HTTP server invalid port",
			setupConfig: func() *MockConfig {
				mockConfig := newMockConfig("invalid")
				mockConfig.On("MetricsEnabled").Return(false)
				mockConfig.On("PprofEnabled").Return(false)
				return mockConfig
			},
			expectError: true,
		},
		{
			name: "serves requests",
			setupConfig: func() *MockConfig {
				httpPort, _ := randomAvailablePort()
				mockConfig := newMockConfig(httpPort)
				mockConfig.On("MetricsEnabled").Return(false)
				mockConfig.On("PprofEnabled").Return(false)
				return mockConfig
			},
			probe: func(t *testing.T, conf *MockConfig) {
				conn, err := net.Dial("tcp", "127.0.0.1:"+conf.HTTPPort())
				require.NoError(t, err)
				defer conn.Close()
				_, err = conn.Write([]byte("GET /ping/ HTTP/1.1\r\nHost: localhost\r\n\r\n"))
				require.NoError(t, err)
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				resp, err := io.ReadAll(conn)
				require.NoError(t, err)
				assert.Contains(t, string(resp), "HTTP/1.1 200 OK\r\n")
				assert.True(t, bytes.HasSuffix(resp, []byte("\r\n\r\npong")))
			},
		},
		{
			name: "successful run with metrics enabled",
			setupConfig: func() *MockConfig {
				metricsPort, _ := randomAvailablePort()
				mockConfig := newMockConfig("0")
				mockConfig.On("MetricsEnabled").Return(true)
				mockConfig.On("MetricsPort").Return(metricsPort)
				mockConfig.On("PprofEnabled").Return(false)
				return mockConfig
			},
			probe: func(t *testing.T, conf *MockConfig) {
				resp, err := http.Get(fmt.Sprintf("http://localhost:%s/metrics", conf.MetricsPort()))
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, 200, resp.StatusCode)
			},
		},
		{
			name: "successful run with pprof enabled",
			setupConfig: func() *MockConfig {
				pprofPort, _ := randomAvailablePort()
				mockConfig := newMockConfig("0")
				mockConfig.On("MetricsEnabled").Return(false)
				mockConfig.On("PprofEnabled").Return(true)
				mockConfig.On("PprofPort").Return(pprofPort)
				return mockConfig
			},
			probe: func(t *testing.T, conf *MockConfig) {
				resp, err := http.Get(fmt.Sprintf("http://localhost:%s/debug/pprof/", conf.PprofPort()))
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, 200, resp.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConfig := tt.setupConfig()
			b, err := New(mockConfig, zerolog.Nop(), BuiltinRoutes)
			require.NoError(t, err)

			done := make(chan error, 1)
			go func() {
				done <- b.Run()
			}()

			if tt.expectError {
				select {
				case err := <-done:
					assert.Error(t, err)
				case <-time.After(2 * time.Second):
					t.Fatal("Run did not report the listen error")
				}
				return
			}

			time.Sleep(200 * time.Millisecond)
			if tt.probe != nil {
				tt.probe(t, mockConfig)
			}
			b.SignalChan <- os.Interrupt
			assert.NoError(t, <-done)
		})
	}
}
