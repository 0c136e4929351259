package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrawlLogAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.log")

	log, err := OpenCrawlLog(path, "session-1")
	require.NoError(t, err)
	require.NoError(t, log.Append("https://docs.example.com/a", OutcomeSuccess))
	require.NoError(t, log.Append("https://docs.example.com/b", OutcomeFailed))
	require.NoError(t, log.Close())

	prior, err := LoadPriorLog(path)
	require.NoError(t, err)
	require.Contains(t, prior.Successful, "https://docs.example.com/a")
	require.NotContains(t, prior.Successful, "https://docs.example.com/b")
	require.Equal(t, []string{"https://docs.example.com/b"}, prior.Failed)
}

func TestCrawlLogAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.log")

	log, err := OpenCrawlLog(path, "session-1")
	require.NoError(t, err)
	require.NoError(t, log.Append("https://docs.example.com/a", OutcomeSuccess))
	require.NoError(t, log.Close())

	log, err = OpenCrawlLog(path, "session-2")
	require.NoError(t, err)
	require.NoError(t, log.Append("https://docs.example.com/b", OutcomeSuccess))
	require.NoError(t, log.Close())

	prior, err := LoadPriorLog(path)
	require.NoError(t, err)
	require.Len(t, prior.Successful, 2, "reopening must append, not truncate")
}

func TestLoadPriorLogIgnoresNoise(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.log")
	raw := "# session abc\n" +
		"success\thttps://docs.example.com/a\n" +
		"\n" +
		"failed\thttps://docs.example.com/b\n" +
		"succ" // partial final line from an interrupted write
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	prior, err := LoadPriorLog(path)
	require.NoError(t, err)
	require.Len(t, prior.Successful, 1)
	require.Equal(t, []string{"https://docs.example.com/b"}, prior.Failed)
}

func TestLoadPriorLogURLThatEventuallySucceeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.log")
	raw := "failed\thttps://docs.example.com/flaky\n" +
		"success\thttps://docs.example.com/flaky\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	prior, err := LoadPriorLog(path)
	require.NoError(t, err)
	require.Contains(t, prior.Successful, "https://docs.example.com/flaky")
	require.Empty(t, prior.Failed)
}

func TestLoadPriorLogMissingFile(t *testing.T) {
	prior, err := LoadPriorLog(filepath.Join(t.TempDir(), "absent.log"))
	require.NoError(t, err)
	require.Empty(t, prior.Successful)
	require.Empty(t, prior.Failed)
}
