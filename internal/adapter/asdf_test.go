package adapter_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap-mac/internal/adapter"
	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/runner"
	"bootstrap-mac/internal/system"
)

func darwinContext() *system.Context {
	return &system.Context{
		GOOS:     "darwin",
		Home:     "/Users/dev",
		Fs:       afero.NewMemMapFs(),
		LookPath: func(string) (string, error) { return "", assert.AnError },
	}
}

func TestAsdfPluginsCheckPresence(t *testing.T) {
	fake := runner.NewFake()
	fake.Script("asdf plugin list", "golang\nnodejs\npython\n", nil)
	plugins := adapter.NewAsdfPlugins(fake)

	present, err := plugins.CheckPresence(context.Background(), config.Entry{Kind: config.KindPlugin, ID: "nodejs"})
	require.NoError(t, err)
	assert.True(t, present)

	present, err = plugins.CheckPresence(context.Background(), config.Entry{Kind: config.KindPlugin, ID: "rust"})
	require.NoError(t, err)
	assert.False(t, present)

	// A broken asdf reads as absent; the dependency edge on the asdf entry
	// keeps the reconciler from attempting plugins when asdf failed.
	fake.Fail("asdf plugin list", "command not found")
	present, err = plugins.CheckPresence(context.Background(), config.Entry{Kind: config.KindPlugin, ID: "nodejs"})
	require.NoError(t, err)
	assert.False(t, present)
}

func TestAsdfPluginsInstall(t *testing.T) {
	t.Run("default registry without source", func(t *testing.T) {
		fake := runner.NewFake()
		plugins := adapter.NewAsdfPlugins(fake)

		e := config.Entry{Kind: config.KindPlugin, ID: "nodejs"}
		require.NoError(t, plugins.Install(context.Background(), e))
		assert.Equal(t, []string{"asdf plugin add nodejs"}, fake.Calls)
	})

	t.Run("explicit source passed verbatim", func(t *testing.T) {
		fake := runner.NewFake()
		plugins := adapter.NewAsdfPlugins(fake)

		e := config.Entry{
			Kind:      config.KindPlugin,
			ID:        "golang",
			SourceRef: "https://github.com/asdf-community/asdf-golang.git",
		}
		require.NoError(t, plugins.Install(context.Background(), e))
		assert.Equal(t, []string{"asdf plugin add golang https://github.com/asdf-community/asdf-golang.git"}, fake.Calls)
	})

	t.Run("failure wraps InstallError", func(t *testing.T) {
		fake := runner.NewFake()
		fake.Fail("asdf plugin add nodejs", "network unreachable")
		plugins := adapter.NewAsdfPlugins(fake)

		err := plugins.Install(context.Background(), config.Entry{Kind: config.KindPlugin, ID: "nodejs"})
		var ierr *adapter.InstallError
		require.ErrorAs(t, err, &ierr)
		assert.Contains(t, ierr.Reason, "network unreachable")
	})
}

func TestParseToolVersions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []adapter.ToolVersion
		wantErr bool
	}{
		{
			name:  "simple pairs",
			input: "nodejs 20.11.0\npython 3.12.1\n",
			want: []adapter.ToolVersion{
				{Tool: "nodejs", Versions: []string{"20.11.0"}},
				{Tool: "python", Versions: []string{"3.12.1"}},
			},
		},
		{
			name:  "multiple versions per tool",
			input: "python 3.12.1 3.11.7\n",
			want:  []adapter.ToolVersion{{Tool: "python", Versions: []string{"3.12.1", "3.11.7"}}},
		},
		{
			name:  "comments and blank lines ignored",
			input: "# managed by bootstrap-mac\n\nnodejs 20.11.0 # lts\n\n",
			want:  []adapter.ToolVersion{{Tool: "nodejs", Versions: []string{"20.11.0"}}},
		},
		{
			name:  "empty file",
			input: "",
			want:  nil,
		},
		{
			name:    "tool without version is malformed",
			input:   "nodejs\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.ParseToolVersions(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionSetCheckPresence(t *testing.T) {
	entry := config.Entry{Kind: config.KindVersionSet, ID: "tool-versions"}

	t.Run("missing declaration file reads as absent", func(t *testing.T) {
		sys := darwinContext()
		vs := adapter.NewVersionSet(sys, runner.NewFake())

		present, err := vs.CheckPresence(context.Background(), entry)
		require.NoError(t, err)
		assert.False(t, present)
	})

	t.Run("all declared versions installed", func(t *testing.T) {
		sys := darwinContext()
		require.NoError(t, afero.WriteFile(sys.Fs, sys.ToolVersionsPath(), []byte("nodejs 20.11.0\npython 3.12.1\n"), 0644))
		fake := runner.NewFake()
		fake.Script("asdf list nodejs", " *20.11.0\n", nil)
		fake.Script("asdf list python", "  3.12.1\n  3.11.7\n", nil)
		vs := adapter.NewVersionSet(sys, fake)

		present, err := vs.CheckPresence(context.Background(), entry)
		require.NoError(t, err)
		assert.True(t, present)
	})

	t.Run("one version missing", func(t *testing.T) {
		sys := darwinContext()
		require.NoError(t, afero.WriteFile(sys.Fs, sys.ToolVersionsPath(), []byte("nodejs 20.11.0\n"), 0644))
		fake := runner.NewFake()
		fake.Script("asdf list nodejs", "  18.19.0\n", nil)
		vs := adapter.NewVersionSet(sys, fake)

		present, err := vs.CheckPresence(context.Background(), entry)
		require.NoError(t, err)
		assert.False(t, present)
	})
}

func TestVersionSetInstall(t *testing.T) {
	entry := config.Entry{Kind: config.KindVersionSet, ID: "tool-versions"}

	t.Run("missing declaration file is ConfigMissing", func(t *testing.T) {
		sys := darwinContext()
		fake := runner.NewFake()
		vs := adapter.NewVersionSet(sys, fake)

		err := vs.Install(context.Background(), entry)
		require.Error(t, err)
		assert.ErrorIs(t, err, adapter.ErrConfigMissing)
		assert.Empty(t, fake.Calls, "no asdf invocation without a declaration file")
	})

	t.Run("runs bulk asdf install", func(t *testing.T) {
		sys := darwinContext()
		require.NoError(t, afero.WriteFile(sys.Fs, sys.ToolVersionsPath(), []byte("nodejs 20.11.0\n"), 0644))
		fake := runner.NewFake()
		vs := adapter.NewVersionSet(sys, fake)

		require.NoError(t, vs.Install(context.Background(), entry))
		assert.Equal(t, []string{"asdf install"}, fake.Calls)
	})

	t.Run("failed install wraps InstallError", func(t *testing.T) {
		sys := darwinContext()
		require.NoError(t, afero.WriteFile(sys.Fs, sys.ToolVersionsPath(), []byte("nodejs 20.11.0\n"), 0644))
		fake := runner.NewFake()
		fake.Fail("asdf install", "build failed")
		vs := adapter.NewVersionSet(sys, fake)

		err := vs.Install(context.Background(), entry)
		var ierr *adapter.InstallError
		require.ErrorAs(t, err, &ierr)
		assert.NotErrorIs(t, err, adapter.ErrConfigMissing)
	})
}
