package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Permissionless-Software-Foundation/bch-nostr/cmd/bch-nostr/commands"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/app"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relayd"
)

const testWIF = "L2HJYqrXgsVghD5fXQZY2X4upFuvvnmF9o3cF3s3AuDix3FzbcB1"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(app.EnvWIF, "")

	root := commands.NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--home", t.TempDir()}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKeys(t *testing.T) {
	out, err := run(t, "keys", "--wif", testWIF)
	require.NoError(t, err)
	assert.Contains(t, out, "8f97b3b776631f7504c000cff2740e3ba08f928522d45c57ce95d6a3bcbeec6e")
	assert.Contains(t, out, "bitcoincash:qq3qfaddp5jmly3qy79zywdj5h85mkvptuclw9a2rc")
}

func TestPost_RequiresWIF(t *testing.T) {
	_, err := run(t, "post", "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPostThenFetch(t *testing.T) {
	ts := httptest.NewServer(relayd.New(nil).Handler())
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	out, err := run(t, "post", "hello over the relay", "--wif", testWIF, "--relay", url)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.Len(t, id, 64)

	out, err = run(t, "fetch", id, "--relay", url)
	require.NoError(t, err)
	assert.Equal(t, "hello over the relay\n", out)
}

func TestInbox_Empty(t *testing.T) {
	out, err := run(t, "inbox", "bitcoincash:qq3qfaddp5jmly3qy79zywdj5h85mkvptuclw9a2rc")
	require.NoError(t, err)
	assert.NotContains(t, out, "unread;")
}

func TestArgsValidated(t *testing.T) {
	_, err := run(t, "signal", "only-one-arg")
	assert.Error(t, err)
}
