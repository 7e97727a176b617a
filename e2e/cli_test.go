//go:build e2e && unix

package main

import (
	"bufio"
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpFlag(t *testing.T) {
	t.Parallel()

	out, _ := exec.Command(binPath, "-help").CombinedOutput()
	output := string(out)
	assert.Contains(t, output, "-root")
	assert.Contains(t, output, "-config")
	assert.Contains(t, output, "-headless")
}

func TestMissingRootFails(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	cfg, err := tf.CreateWorkspace()
	require.NoError(t, err)

	cmd := exec.Command(binPath, "-config", cfg, "-root", "/no/such/songbook")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(out), "/no/such/songbook")
}

func TestDumpPrintsLibrary(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	cfg, err := tf.CreateWorkspace()
	require.NoError(t, err)

	out, err := exec.Command(binPath, "-config", cfg, "-dump").Output()
	require.NoError(t, err)

	output := string(out)
	assert.Contains(t, output, `"title": "Choir"`)
	assert.Contains(t, output, `"artist": "Mozart"`)
	assert.Contains(t, output, `"slides": 2`)
	assert.Contains(t, output, "readme.pptx", "Unparseable deck listed as a failure")
	assert.NotContains(t, output, "~1-Queen")
}

func TestHeadlessPrintsInitialState(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	cfg, err := tf.CreateWorkspace()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, "-config", cfg, "-headless")
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	select {
	case line := <-lines:
		assert.Equal(t, "collections 1-Choir", line)
	case <-time.After(5 * time.Second):
		t.Error("no state printed")
	}

	require.NoError(t, cmd.Process.Signal(syscall.SIGINT))
	_ = cmd.Wait()
}
