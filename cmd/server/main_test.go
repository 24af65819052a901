package main

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FailsWhenPortIsBusy(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	var out bytes.Buffer
	err = run(context.Background(), []string{"-port", port, "-storage", "in-memory"}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "server failed")
}

func TestRun_InvalidStorage(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-storage", "floppy"}, &out)
	assert.ErrorContains(t, err, "invalid storage type")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"-port", "0", "-storage", "in-memory"}, &out)
	assert.NoError(t, err)
}
