package flatyml_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
	"github.com/randalmurphal/flatyml/pkg/flatyml/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with content in a temp dir and returns its path.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// parsed opens content from disk and parses it.
func parsed(t *testing.T, content string, opts ...flatyml.Option) *flatyml.Reader {
	t.Helper()
	r, err := flatyml.Open(writeFile(t, content), opts...)
	require.NoError(t, err)
	require.NoError(t, r.Parse(context.Background()))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestScenario_NameAndSlots(t *testing.T) {
	r := parsed(t, "name: \"srv1\"\nslots: 4\n")

	var name []byte
	found, err := r.GetInto("name", &name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{'s', 'r', 'v', '1', 0}, name)

	var slots int
	found, err = r.GetInto("slots", &slots)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, slots)

	found, err = r.GetInto("missing", &slots)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 4, slots, "miss must not touch the destination")
}

func TestScenario_DuplicateIntegersLastWins(t *testing.T) {
	r := parsed(t, "x: 1\nx: 2\n")

	n, ok := r.Int("x")
	require.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.Len())
}

func TestScenario_StringAfterInteger(t *testing.T) {
	r := parsed(t, "x: 1\nx: \"y\"\n")

	s, ok := r.String("x")
	require.True(t, ok)
	assert.Equal(t, "y", s)

	var raw []byte
	_, err := r.GetInto("x", &raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{'y', 0}, raw)
}

func TestScenario_StringBeforeIntegerStillWinsInTwoPass(t *testing.T) {
	r := parsed(t, "x: \"y\"\nx: 1\n")

	v, ok := r.Get("x")
	require.True(t, ok)
	assert.Equal(t, flatyml.KindString, v.Kind)
}

func TestScenario_CommentIgnored(t *testing.T) {
	r := parsed(t, "# comment\nport:  8080\n")

	n, ok := r.Int("port")
	require.True(t, ok)
	assert.Equal(t, 8080, n)
	assert.Equal(t, []string{"port"}, r.Keys())
}

func TestScenario_ManyKeys(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 260; i++ {
		fmt.Fprintf(&b, "key_%d: %d\n", i, i*3)
	}
	r := parsed(t, b.String())

	require.Equal(t, 260, r.Len())
	for i := 0; i < 260; i++ {
		n, ok := r.Int(fmt.Sprintf("key_%d", i))
		require.True(t, ok, "key_%d", i)
		assert.Equal(t, i*3, n)
	}
}

func TestScenario_ParseTwice(t *testing.T) {
	r := parsed(t, "a: 1\nb: \"two\"\n")
	before := r.Snapshot()

	err := r.Parse(context.Background())
	assert.ErrorIs(t, err, flatyml.ErrAlreadyParsed)
	assert.Equal(t, flatyml.CodeAlreadyParsed, flatyml.CodeOf(err))
	assert.Equal(t, before, r.Snapshot())
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{"empty file", "", map[string]any{}},
		{"only unrecognized", "# c\n\nlist:\n  - a\nf: 1.5\nb: true\nu: plain\n", map[string]any{}},
		{"negative integer", "delta: -12\n", map[string]any{"delta": -12}},
		{"empty quoted string", "e: \"\"\n", map[string]any{"e": ""}},
		{"crlf line endings", "a: 1\r\nb: \"x\"\r\n", map[string]any{"a": 1, "b": "x"}},
		{"indented lines", "  a: 1\n\tb: \"x\"\n", map[string]any{"a": 1, "b": "x"}},
		{"trailing comments", "port: 8080 # http\nname: \"srv1\"  # main\n", map[string]any{"port": 8080, "name": "srv1"}},
		{"two assignments on one line", "a: 1 b: 2\n", map[string]any{"a": 1, "b": 2}},
		{"commented out assignments", "# a: 1\nb: 2 # c: 3\n", map[string]any{"b": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parsed(t, tt.content)
			assert.Equal(t, tt.want, r.Snapshot().Map())
		})
	}
}

func TestEmptyStringIsSingleNUL(t *testing.T) {
	r := parsed(t, "e: \"\"\n")

	buf := make([]byte, 4)
	found, err := r.GetInto("e", buf)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, byte(0), buf[0])

	v, _ := r.Get("e")
	assert.Equal(t, 1, v.Size())
}

func TestLongKeyAndValue(t *testing.T) {
	key := strings.Repeat("k", 2000)
	val := strings.Repeat("abc ", 1000)
	r := parsed(t, key+": \""+val+"\"\n")

	s, ok := r.String(key)
	require.True(t, ok)
	assert.Equal(t, val, s)
}

func TestRoundTrip_BytesMatchStoredValue(t *testing.T) {
	r := parsed(t, "a: 7\nb: -1\nc: \"hello world\"\nd: \"\"\n")

	for _, e := range r.Snapshot() {
		t.Run(e.Key, func(t *testing.T) {
			assert.Equal(t, e.Size, e.Value.Size())

			dst := make([]byte, e.Size)
			found, err := r.GetInto(e.Key, dst)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, e.Value.Bytes(), dst)

			if e.Value.Kind == flatyml.KindInt && index.IntSize == 8 {
				assert.Equal(t, int64(e.Value.Int), int64(binary.NativeEndian.Uint64(dst)))
			}
		})
	}
}

func TestGetInto_Destinations(t *testing.T) {
	r := parsed(t, "n: 42\ns: \"str\"\n")

	t.Run("int64", func(t *testing.T) {
		var n int64
		found, err := r.GetInto("n", &n)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(42), n)
	})

	t.Run("string", func(t *testing.T) {
		var s string
		found, err := r.GetInto("s", &s)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "str", s)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		var s string
		_, err := r.GetInto("n", &s)
		assert.ErrorIs(t, err, flatyml.ErrKindMismatch)

		var n int
		_, err = r.GetInto("s", &n)
		assert.ErrorIs(t, err, flatyml.ErrKindMismatch)

		var f float64
		_, err = r.GetInto("n", &f)
		assert.ErrorIs(t, err, flatyml.ErrKindMismatch)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := r.GetInto("s", make([]byte, 3))
		assert.ErrorIs(t, err, io.ErrShortBuffer)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		var n int
		_, err := r.GetInto("", &n)
		assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)

		_, err = r.GetInto("n", nil)
		assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)

		var np *int
		_, err = r.GetInto("n", np)
		assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)
		assert.Equal(t, flatyml.CodeInvalidPointer, flatyml.CodeOf(err))
	})
}

func TestTypedHelpers_WrongKind(t *testing.T) {
	r := parsed(t, "n: 1\ns: \"x\"\n")

	_, ok := r.Int("s")
	assert.False(t, ok)
	_, ok = r.String("n")
	assert.False(t, ok)
}

func TestLookupBeforeParse(t *testing.T) {
	r := flatyml.OpenBytes("mem", []byte("a: 1\n"))
	defer r.Close()

	assert.False(t, r.Parsed())
	_, ok := r.Get("a")
	assert.False(t, ok)

	var n int
	found, err := r.GetInto("a", &n)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.Parse(context.Background()))
	assert.True(t, r.Parsed())
	n, ok = r.Int("a")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestClose(t *testing.T) {
	r := flatyml.OpenBytes("mem", []byte("a: 1\n"))
	require.NoError(t, r.Parse(context.Background()))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "second close is a no-op")

	_, ok := r.Get("a")
	assert.False(t, ok)

	var n int
	_, err := r.GetInto("a", &n)
	assert.ErrorIs(t, err, flatyml.ErrClosed)

	assert.ErrorIs(t, r.Parse(context.Background()), flatyml.ErrClosed)
}

func TestCloseFreshReader(t *testing.T) {
	r := flatyml.OpenBytes("mem", []byte("a: 1\n"))
	assert.NoError(t, r.Close())
}

func TestNilReader(t *testing.T) {
	var r *flatyml.Reader

	assert.ErrorIs(t, r.Parse(context.Background()), flatyml.ErrInvalidPointer)
	assert.ErrorIs(t, r.Close(), flatyml.ErrInvalidPointer)
	_, err := r.GetInto("a", new(int))
	assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)
	_, ok := r.Get("a")
	assert.False(t, ok)
}

func TestParse_CanceledContext(t *testing.T) {
	r := flatyml.OpenBytes("mem", []byte("a: 1\n"))
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Parse(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var pe *flatyml.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "int", pe.Pass)
	assert.False(t, r.Parsed())

	// The mutex is released on failure, so a retry can succeed.
	require.NoError(t, r.Parse(context.Background()))
	assert.Equal(t, 1, r.Len())
}

func TestSinglePassMode(t *testing.T) {
	r := parsed(t, "x: \"y\"\nx: 1\nz: \"q\"\n", flatyml.WithScanMode(flatyml.SinglePass))

	n, ok := r.Int("x")
	require.True(t, ok, "document order: the integer comes last")
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"x", "z"}, r.Keys())
}

func TestOpen_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := flatyml.Open("")
		assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := flatyml.Open(filepath.Join(t.TempDir(), "nope.yml"))
		assert.ErrorIs(t, err, flatyml.ErrInvalidFile)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, flatyml.CodeInvalidFile, flatyml.CodeOf(err))

		var se *flatyml.SourceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "open", se.Op)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := flatyml.Open(t.TempDir())
		assert.ErrorIs(t, err, flatyml.ErrFileError)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeFile(t, "a: 1234567890\n")
		_, err := flatyml.Open(path, flatyml.WithMaxSourceSize(4))
		assert.ErrorIs(t, err, flatyml.ErrOutOfMemory)
		assert.Equal(t, flatyml.CodeOutOfMemory, flatyml.CodeOf(err))
	})

	t.Run("too large regardless of option order", func(t *testing.T) {
		src := flatyml.SourceFunc(func(string) ([]byte, error) {
			return []byte("a: 1234567890\n"), nil
		})

		_, err := flatyml.Open("x.yml", flatyml.WithSource(src), flatyml.WithMaxSourceSize(4))
		assert.ErrorIs(t, err, flatyml.ErrOutOfMemory)

		_, err = flatyml.Open("x.yml", flatyml.WithMaxSourceSize(4), flatyml.WithSource(src))
		assert.ErrorIs(t, err, flatyml.ErrOutOfMemory)

		r, err := flatyml.Open("x.yml", flatyml.WithSource(src), flatyml.WithMaxSourceSize(64))
		require.NoError(t, err)
		r.Close()
	})

	t.Run("too large stream", func(t *testing.T) {
		_, err := flatyml.OpenFrom("stdin", strings.NewReader("a: 1234567890\n"), flatyml.WithMaxSourceSize(4))
		assert.ErrorIs(t, err, flatyml.ErrOutOfMemory)

		r, err := flatyml.OpenFrom("stdin", strings.NewReader("a: 1\n"), flatyml.WithMaxSourceSize(5))
		require.NoError(t, err)
		r.Close()
	})

	t.Run("custom source error is classified", func(t *testing.T) {
		src := flatyml.SourceFunc(func(string) ([]byte, error) {
			return nil, errors.New("disk on fire")
		})
		_, err := flatyml.Open("x.yml", flatyml.WithSource(src))
		assert.ErrorIs(t, err, flatyml.ErrFileError)
	})
}

func TestOpen_CustomSource(t *testing.T) {
	src := flatyml.SourceFunc(func(path string) ([]byte, error) {
		return []byte("path_len: " + fmt.Sprint(len(path)) + "\n"), nil
	})

	r, err := flatyml.Open("abc.yml", flatyml.WithSource(src))
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Parse(context.Background()))

	n, ok := r.Int("path_len")
	require.True(t, ok)
	assert.Equal(t, 7, n)
	assert.Equal(t, "abc.yml", r.Name())
}

func TestParse_LogsCarrySource(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := flatyml.OpenBytes("app.yml", []byte("a: 1\na: 2\n"), flatyml.WithLogger(logger))
	require.NoError(t, r.Parse(context.Background()))
	require.NoError(t, r.Close())

	var msgs []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		assert.Equal(t, "app.yml", rec["source"])
		msgs = append(msgs, rec["msg"].(string))
	}
	assert.Equal(t, []string{
		"reader opened",
		"parse starting",
		"duplicate key overwritten",
		"parse completed",
		"reader closed",
	}, msgs)
}

func TestOpenFrom(t *testing.T) {
	r, err := flatyml.OpenFrom("stdin", strings.NewReader("a: \"b\"\n"))
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Parse(context.Background()))

	s, ok := r.String("a")
	require.True(t, ok)
	assert.Equal(t, "b", s)

	_, err = flatyml.OpenFrom("nil", nil)
	assert.ErrorIs(t, err, flatyml.ErrInvalidPointer)
}

func TestOpenBytes_CopiesInput(t *testing.T) {
	data := []byte("a: 1\n")
	r := flatyml.OpenBytes("mem", data)
	defer r.Close()

	data[3] = '9'
	require.NoError(t, r.Parse(context.Background()))
	n, _ := r.Int("a")
	assert.Equal(t, 1, n)
}

func TestConcurrentParse(t *testing.T) {
	r := flatyml.OpenBytes("mem", []byte("a: 1\nb: \"x\"\n"))
	defer r.Close()

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Parse(context.Background())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, flatyml.ErrAlreadyParsed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, r.Len())
}

func TestConcurrentLookupsDuringParse(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "k%d: %d\n", i, i)
	}
	r := flatyml.OpenBytes("mem", []byte(b.String()))
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				// Either nothing or everything is visible.
				n := r.Len()
				assert.True(t, n == 0 || n == 100, "torn index: %d entries", n)
				if v, ok := r.Int("k99"); ok {
					assert.Equal(t, 99, v)
				}
			}
		}()
	}
	require.NoError(t, r.Parse(context.Background()))
	wg.Wait()
}
