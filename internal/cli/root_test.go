package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/petmart/internal/router"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "cli-test-secret")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"serve", "migrate", "purge-carts", "token"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestTokenCommand(t *testing.T) {
	out, err := runRoot(t, "token", "--user", "admin-1", "--email", "Admin@Petmart.ca", "--role", "admin")
	require.NoError(t, err)

	claims, err := router.NewAuthenticator("cli-test-secret", 0).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin@petmart.ca", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenCommandRequiresUser(t *testing.T) {
	_, err := runRoot(t, "token", "--email", "jamie@example.com")
	assert.Error(t, err)
}

func TestTokenCommandRejectsBadTTL(t *testing.T) {
	_, err := runRoot(t, "token", "--user", "u-1", "--ttl", "-1h")
	assert.ErrorContains(t, err, "ttl must be positive")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runRoot(t, "--config", "does-not-exist.yaml", "token", "--user", "u-1")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--user", "u-1"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "invalid configuration")
}
