package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/adapters/output"
	"go.nabs.build/nabs/internal/core/domain"
)

func taskRef(t *testing.T, project, name string) domain.TaskRef {
	t.Helper()
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)
	valid, err := root.Subpath(".").Validate()
	require.NoError(t, err)
	_ = project
	return domain.TaskRef{Project: domain.ProjectRef{Root: valid}, Name: name}
}

func TestMultiplexer_PrefixesWholeLines(t *testing.T) {
	var dest bytes.Buffer
	ref := taskRef(t, "app", "build")
	mux := output.NewMultiplexer(&dest, []domain.TaskRef{ref})

	w := mux.Writer(ref, 0)
	_, err := w.Write([]byte("hello\nworld\n"))
	require.NoError(t, err)

	out := dest.String()
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}

func TestMultiplexer_BuffersPartialLines(t *testing.T) {
	var dest bytes.Buffer
	ref := taskRef(t, "app", "build")
	mux := output.NewMultiplexer(&dest, []domain.TaskRef{ref})

	w := mux.Writer(ref, 0)
	_, err := w.Write([]byte("partial"))
	require.NoError(t, err)
	assert.Empty(t, dest.String())

	_, err = w.Write([]byte(" line\n"))
	require.NoError(t, err)
	assert.Contains(t, dest.String(), "partial line")
}

func TestMultiplexer_CloseFlushesTrailingPartialLine(t *testing.T) {
	var dest bytes.Buffer
	ref := taskRef(t, "app", "build")
	mux := output.NewMultiplexer(&dest, []domain.TaskRef{ref})

	w := mux.Writer(ref, 0)
	_, err := w.Write([]byte("no trailing newline"))
	require.NoError(t, err)
	assert.Empty(t, dest.String())

	require.NoError(t, w.Close())
	assert.Contains(t, dest.String(), "no trailing newline")
}

func TestMultiplexer_ConcurrentWritersDoNotInterleaveLines(t *testing.T) {
	var dest bytes.Buffer
	ref1 := taskRef(t, "a", "build")
	ref2 := taskRef(t, "b", "build")
	mux := output.NewMultiplexer(&dest, []domain.TaskRef{ref1, ref2})

	w1 := mux.Writer(ref1, 0)
	w2 := mux.Writer(ref2, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			_, _ = w1.Write([]byte("one\n"))
		}
		close(done)
	}()
	for i := 0; i < 50; i++ {
		_, _ = w2.Write([]byte("two\n"))
	}
	<-done

	lines := bytes.Count(dest.Bytes(), []byte("\n"))
	assert.Equal(t, 100, lines)
}
