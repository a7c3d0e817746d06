package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() ([]byte, error) { return []byte(pw), err }
}

func TestRun_CreatesUser(t *testing.T) {
	var given []byte
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() ([]byte, error) {
		given = []byte("hunter2\n")
		return given, nil
	}

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-d", "memory", "-email", "root@x.com", "-name", "Root", "-role", "admin", "-bcrypt-cost", "4"}, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "email=root@x.com role=ADMIN")
	assert.NotContains(t, out.String(), "hunter2")
	assert.Equal(t, make([]byte, len(given)), given, "password buffer is wiped")
}

func TestRun_GenSecret(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() ([]byte, error) {
		t.Fatal("password prompt is not expected")
		return nil, nil
	}

	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-gen-secret"}, &out, &errOut))

	secret := strings.TrimSpace(out.String())
	assert.Len(t, secret, 2*secretBytes)
	_, err := hex.DecodeString(secret)
	assert.NoError(t, err)
}

func TestRun_RequiresEmail(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-d", "memory"}, &out, &errOut)
	assert.Error(t, err)
}

func TestRun_EmptyPassword(t *testing.T) {
	withPassword(t, "", nil)

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-d", "memory", "-email", "root@x.com", "-bcrypt-cost", "4"}, &out, &errOut)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestRun_PromptError(t *testing.T) {
	withPassword(t, "", errors.New("not a terminal"))

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-d", "memory", "-email", "root@x.com"}, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read password")
}
