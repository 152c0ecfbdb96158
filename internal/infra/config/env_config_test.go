package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/homecase-console/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue string           `env:"STRING_VALUE" default:"default"`
	IntValue    int              `env:"INT_VALUE" default:"42"`
	BoolValue   bool             `env:"BOOL_VALUE" default:"true"`
	Timeout     time.Duration    `env:"TIMEOUT" default:"15s"`
	Ratio       float64          `env:"RATIO" default:"0.5"`
	NoEnvTag    string
	Nested      testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" default:"nested-default"`
}

type testValues struct {
	StringValue string
	IntValue    int
	BoolValue   bool
	Timeout     time.Duration
	Ratio       float64
	Nested      string
}

func valuesOf(cfg *testConfig) testValues {
	return testValues{
		StringValue: cfg.StringValue,
		IntValue:    cfg.IntValue,
		BoolValue:   cfg.BoolValue,
		Timeout:     cfg.Timeout,
		Ratio:       cfg.Ratio,
		Nested:      cfg.Nested.NestedString,
	}
}

func defaults() testValues {
	return testValues{
		StringValue: "default",
		IntValue:    42,
		BoolValue:   true,
		Timeout:     15 * time.Second,
		Ratio:       0.5,
		Nested:      "nested-default",
	}
}

func with(fn func(*testValues)) testValues {
	v := defaults()
	fn(&v)

	return v
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    testValues
		wantErr bool
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
			want:    defaults(),
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"STRING_VALUE":  "env-value",
				"INT_VALUE":     "123",
				"BOOL_VALUE":    "false",
				"TIMEOUT":       "2m",
				"RATIO":         "1.25",
				"NESTED_STRING": "env-nested",
			},
			want: testValues{
				StringValue: "env-value",
				IntValue:    123,
				BoolValue:   false,
				Timeout:     2 * time.Minute,
				Ratio:       1.25,
				Nested:      "env-nested",
			},
		},
		{
			name:    "bare integer durations are seconds",
			envVars: map[string]string{"TIMEOUT": "30"},
			want:    with(func(v *testValues) { v.Timeout = 30 * time.Second }),
		},
		{
			name:    "handles prefix correctly",
			prefix:  "APP",
			envVars: map[string]string{"APP_STRING_VALUE": "prefixed-value"},
			want:    with(func(v *testValues) { v.StringValue = "prefixed-value" }),
		},
		{
			name:    "falls back to unprefixed name",
			prefix:  "APP_SERVICE",
			envVars: map[string]string{"STRING_VALUE": "bare"},
			want:    with(func(v *testValues) { v.StringValue = "bare" }),
		},
		{
			name:   "prefers more specific prefix",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"APP_STRING_VALUE":         "less-specific",
				"APP_SERVICE_STRING_VALUE": "more-specific",
			},
			want: with(func(v *testValues) { v.StringValue = "more-specific" }),
		},
		{
			name:    "handles empty string values",
			envVars: map[string]string{"STRING_VALUE": ""},
			want:    with(func(v *testValues) { v.StringValue = "" }),
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"INT_VALUE": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"BOOL_VALUE": "not-a-bool"},
			wantErr: true,
		},
		{
			name:    "fails on invalid duration",
			envVars: map[string]string{"TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.prefix)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, valuesOf(cfg))
			assert.Empty(t, cfg.NoEnvTag)
			assert.Equal(t, tt.prefix, cfg.Namespace())
		})
	}
}

//nolint:paralleltest
func TestParse_RequiredVar(t *testing.T) {
	cfg := &struct {
		EnvConfig

		Endpoint string `env:"ENDPOINT"`
	}{}

	err := Parse(context.Background(), cfg, "")
	require.ErrorIs(t, err, ErrVarNotSet)

	t.Setenv("ENDPOINT", "https://example.test/graphql")
	require.NoError(t, Parse(context.Background(), cfg, ""))
	assert.Equal(t, "https://example.test/graphql", cfg.Endpoint)
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  interface{}
	}{
		{name: "non-pointer config", cfg: testConfig{}},
		{name: "non-struct pointer", cfg: new(string)},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

//nolint:paralleltest
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(path, []byte("DOTENV_ONLY=from-file\nDOTENV_SHADOWED=from-file\n"), 0o600))

	t.Setenv("DOTENV_SHADOWED", "from-env")
	t.Cleanup(func() { os.Unsetenv("DOTENV_ONLY") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-file", os.Getenv("DOTENV_ONLY"))
	assert.Equal(t, "from-env", os.Getenv("DOTENV_SHADOWED"))
}
