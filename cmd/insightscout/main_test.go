package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/stubserver"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	configFile = ""
}

func newStubURL(t *testing.T) string {
	t.Helper()
	fixture, err := stubserver.DefaultFixture()
	require.NoError(t, err)
	server := httptest.NewServer(stubserver.New(stubserver.Config{}, fixture, nil).Handler())
	t.Cleanup(server.Close)
	return server.URL + stubserver.GeneratePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := newRootCommand()

	assert.Equal(t, "insightscout", root.Use)
	assert.NotNil(t, root.RunE)
	for _, name := range []string{"ask", "examples", "stub"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, root.Flags().Lookup("no-alt-screen"))
	assert.NotNil(t, root.PersistentFlags().Lookup("endpoint"))
}

func TestAskCommand(t *testing.T) {
	isolate(t)
	endpoint := newStubURL(t)

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		contains []string
		excludes []string
	}{
		{
			name:     "matched question",
			args:     []string{"ask", "--endpoint", endpoint, "Are there special provisions for IT parks?"},
			contains: []string{"Generated Answer", "IT parks qualify", "Sources Found", "Retrieved Source 1", "Retrieved Source 3"},
		},
		{
			name:     "example by index",
			args:     []string{"ask", "--endpoint", endpoint, "--example", "2"},
			contains: []string{"Q: " + engine.DefaultExamples[1], "Atal Setu"},
		},
		{
			name:     "no sources",
			args:     []string{"ask", "--endpoint", endpoint, "Will the monsoon arrive early?"},
			contains: []string{"do not cover"},
			excludes: []string{"Sources Found"},
		},
		{
			name:     "service failure",
			args:     []string{"ask", "--endpoint", endpoint, "Is the space asleep?"},
			wantErr:  true,
			contains: []string{engine.FallbackAnswer, "generation failed"},
		},
		{
			name:    "blank question",
			args:    []string{"ask", "--endpoint", endpoint, "   "},
			wantErr: true,
		},
		{
			name:    "example out of range",
			args:    []string{"ask", "--endpoint", endpoint, "--example", "9"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestAskRejectsBadEndpoint(t *testing.T) {
	isolate(t)
	_, err := execute(t, "ask", "--endpoint", "ftp://example.com", "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.endpoint")
}

func TestExamplesCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "examples")
	require.NoError(t, err)
	for idx, question := range engine.DefaultExamples {
		assert.Contains(t, out, question)
		assert.Contains(t, out, string(rune('1'+idx))+". ")
	}
}

func TestExamplesCommandReadsConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "insightscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("examples:\n  - What is the EV policy?\n  - \"  \"\n"), 0o644))

	out, err := execute(t, "--config", path, "examples")
	require.NoError(t, err)
	assert.Equal(t, "1. What is the EV policy?\n", out)
}
