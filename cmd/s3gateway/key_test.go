package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/s3gateway"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	keyIDs = s3gateway.IdentifierSet{}
	keyPrefix, keyShared = false, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestKeyCommand_ObjectKey(t *testing.T) {
	out, err := execute(t, "key",
		"--client-id", "Acme Co",
		"--container-type", "form",
		"--container-id", "INV-01",
		"--file-name", "invoice 1.pdf",
	)
	require.NoError(t, err)
	assert.Equal(t, "acme_co/client/form/inv-01/invoice_1.pdf\n", out)
}

func TestKeyCommand_Prefix(t *testing.T) {
	out, err := execute(t, "key", "--prefix",
		"--client-id", "acme",
		"--container-type", "attachment",
		"--table-name", "C_Order",
		"--record-id", "1000001",
		"--user-id", "100",
	)
	require.NoError(t, err)
	assert.Equal(t, "acme/user/100/attachment/c_order/1000001\n", out)

	out, err = execute(t, "key", "--prefix", "--shared",
		"--client-id", "acme",
		"--container-type", "attachment",
		"--table-name", "C_Order",
		"--record-id", "1000001",
		"--user-id", "100",
	)
	require.NoError(t, err)
	assert.Equal(t, "acme/client/attachment/c_order/1000001\n", out)
}

func TestKeyCommand_ValidationError(t *testing.T) {
	_, err := execute(t, "key", "--client-id", "acme", "--container-type", "widget", "--file-name", "a")
	require.Error(t, err)
	assert.Equal(t, s3gateway.MsgInvalidContainerType, err.Error())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel(" Warning ").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("").String())
}
