package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/s3gateway/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"empty", "", false},
		{"http", "http://localhost:7878", false},
		{"https with path", "https://gw.example.com/base", false},
		{"no scheme", "localhost:7878", true},
		{"wrong scheme", "ftp://localhost", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&clientcli.Config{Endpoint: tt.endpoint}).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &clientcli.Config{ClientID: "acme"}
	withDefaults := cfg.WithDefaults()

	assert.Equal(t, clientcli.DefaultEndpoint, withDefaults.Endpoint)
	assert.Equal(t, "acme", withDefaults.ClientID)
	assert.Empty(t, cfg.Endpoint, "original must not be mutated")
}

func TestConfig_Apply(t *testing.T) {
	cfg := &clientcli.Config{ClientID: "acme", UserID: "100", RoleID: "7"}

	ids := cfg.Apply(clientcli.Identifiers{ClientID: "other", UserID: "  ", FileName: "a.txt"})

	assert.Equal(t, "other", ids.ClientID)
	assert.Equal(t, "100", ids.UserID)
	assert.Equal(t, "7", ids.RoleID)
	assert.Equal(t, "a.txt", ids.FileName)
}

func TestProfile_Normalize(t *testing.T) {
	t.Run("trims fields", func(t *testing.T) {
		p := clientcli.Profile{Name: " dev ", Endpoint: " http://gw:7878/ ", ClientID: " acme ", UserID: " 100 "}
		require.NoError(t, p.Normalize())
		assert.Equal(t, clientcli.Profile{Name: "dev", Endpoint: "http://gw:7878", ClientID: "acme", UserID: "100"}, p)
	})

	t.Run("endpoint required", func(t *testing.T) {
		p := clientcli.Profile{Name: "dev", ClientID: "acme"}
		assert.ErrorIs(t, p.Normalize(), clientcli.ErrInvalidEndpoint)
	})

	t.Run("client id required", func(t *testing.T) {
		p := clientcli.Profile{Name: "dev", Endpoint: "http://gw", ClientID: "  "}
		assert.ErrorIs(t, p.Normalize(), clientcli.ErrClientIDRequired)
	})
}

func TestConfigFile_Lookup(t *testing.T) {
	t.Run("no profiles", func(t *testing.T) {
		cf := &clientcli.ConfigFile{}
		_, err := cf.Lookup("")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
		assert.Empty(t, cf.DefaultName())
	})

	t.Run("default falls back to first", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b"}}}
		p, err := cf.Lookup("")
		require.NoError(t, err)
		assert.Equal(t, "a", p.Name)
	})

	t.Run("marked default wins", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b", Default: true}}}
		assert.Equal(t, "b", cf.DefaultName())
	})

	t.Run("unknown name", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}}}
		_, err := cf.Lookup("b")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})
}

func TestConfigFile_Put(t *testing.T) {
	t.Run("first profile becomes default", func(t *testing.T) {
		cf := &clientcli.ConfigFile{}
		created, err := cf.Put(clientcli.Profile{Name: "dev", Endpoint: "http://a/", ClientID: "acme"}, false)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "dev", cf.DefaultName())
		assert.Equal(t, "http://a", cf.Profiles[0].Endpoint)
	})

	t.Run("update keeps the default flag", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
			{Name: "dev", Endpoint: "http://a", ClientID: "acme", Default: true},
			{Name: "prod", Endpoint: "https://b", ClientID: "acme"},
		}}
		created, err := cf.Put(clientcli.Profile{Name: "dev", Endpoint: "http://c", ClientID: "other", RoleID: "7"}, false)
		require.NoError(t, err)
		assert.False(t, created)

		p, err := cf.Lookup("dev")
		require.NoError(t, err)
		assert.Equal(t, &clientcli.Profile{Name: "dev", Endpoint: "http://c", ClientID: "other", RoleID: "7", Default: true}, p)
	})

	t.Run("make default moves the flag", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "dev", Endpoint: "http://a", ClientID: "acme", Default: true}}}
		_, err := cf.Put(clientcli.Profile{Name: "prod", Endpoint: "https://b", ClientID: "acme"}, true)
		require.NoError(t, err)
		assert.Equal(t, "prod", cf.DefaultName())
		assert.False(t, cf.Profiles[0].Default)
	})

	t.Run("invalid profile is not stored", func(t *testing.T) {
		cf := &clientcli.ConfigFile{}
		_, err := cf.Put(clientcli.Profile{Name: "dev", Endpoint: "http://a"}, false)
		assert.ErrorIs(t, err, clientcli.ErrClientIDRequired)
		assert.Empty(t, cf.Profiles)
	})
}

func TestConfigFile_Remove(t *testing.T) {
	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a", Default: true}, {Name: "b"}, {Name: "c"}}}

	require.NoError(t, cf.Remove("a"))
	assert.Equal(t, "b", cf.DefaultName())
	assert.True(t, cf.Profiles[0].Default)

	assert.ErrorIs(t, cf.Remove("a"), clientcli.ErrProfileNotFound)

	require.NoError(t, cf.SetDefault("c"))
	assert.False(t, cf.Profiles[0].Default)
	assert.True(t, cf.Profiles[1].Default)
	assert.ErrorIs(t, cf.SetDefault("missing"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:7878", ClientID: "acme", UserID: "100", Default: true},
	}}
	require.NoError(t, cf.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cf, loaded)

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("profiles: [yaml: content"), 0o600))
		_, err := clientcli.LoadConfigFile(bad)
		assert.Error(t, err)
	})
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", ClientID: "acme", UserID: "1"},
				{Endpoint: "http://b.com", UserID: "2"},
			},
			expected: &clientcli.Config{Endpoint: "http://b.com", ClientID: "acme", UserID: "2"},
		},
		{
			name: "empty strings do not override",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", ClientID: "acme", RoleID: "r"},
				{},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", ClientID: "acme", RoleID: "r"},
		},
		{
			name: "nil config is skipped",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com"},
				nil,
				{ClientID: "acme"},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", ClientID: "acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.MergeConfig(tt.configs...))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("S3GATEWAY_ENDPOINT", "http://gw.example.com")
	t.Setenv("S3GATEWAY_CLIENT_ID", "acme")
	t.Setenv("S3GATEWAY_USER_ID", "100")
	t.Setenv("S3GATEWAY_ROLE_ID", "")
	t.Setenv("S3GATEWAY_PROFILE", "prod")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "http://gw.example.com", cfg.Endpoint)
	assert.Equal(t, "acme", cfg.ClientID)
	assert.Equal(t, "100", cfg.UserID)
	assert.Empty(t, cfg.RoleID)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
}

func TestProfile_Config(t *testing.T) {
	var missing *clientcli.Profile
	assert.Equal(t, &clientcli.Config{}, missing.Config())

	cfg := (&clientcli.Profile{Name: "x", Endpoint: "http://a", ClientID: "acme", RoleID: "r"}).Config()
	assert.Equal(t, &clientcli.Config{Endpoint: "http://a", ClientID: "acme", RoleID: "r"}, cfg)
}
