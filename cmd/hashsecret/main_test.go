package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/interview-scheduler/internal/utils"
)

func TestRunHashesArgument(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"hook-secret"}, strings.NewReader(""), &out))

	line := strings.TrimSpace(out.String())
	require.True(t, strings.HasPrefix(line, "IDENTITY_WEBHOOK_SECRET_HASH="))
	hash := strings.TrimPrefix(line, "IDENTITY_WEBHOOK_SECRET_HASH=")
	assert.True(t, utils.VerifySecret(hash, "hook-secret"))
}

func TestRunReadsStdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader("from-stdin\n"), &out))
	hash := strings.TrimPrefix(strings.TrimSpace(out.String()), "IDENTITY_WEBHOOK_SECRET_HASH=")
	assert.True(t, utils.VerifySecret(hash, "from-stdin"))
	assert.False(t, utils.VerifySecret(hash, "from-stdin\n"))
}

func TestRunRejectsEmptySecret(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, strings.NewReader("\n"), &out))
	assert.Error(t, run([]string{"  "}, strings.NewReader(""), &out))
	assert.Empty(t, out.String())
}
