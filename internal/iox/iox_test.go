package iox

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello\n", "hello"},
		{"hello", "hello"},
		{"hello\n\n", "hello\n"},
		{"hello\r\n", "hello"},
		{"", ""},
		{"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Text([]byte(tt.in)))
		})
	}
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Lines([]byte("a\nb\n")))
	assert.Equal(t, []string{"a", "b"}, Lines([]byte("a\nb")))
	assert.Equal(t, []string{"a", ""}, Lines([]byte("a\n\n")))
	assert.Equal(t, []string{"a", "b"}, Lines([]byte("a\r\nb\r\n")))
	assert.Empty(t, Lines([]byte("")))
}

func TestJSON(t *testing.T) {
	var v map[string]int
	require.NoError(t, JSON([]byte(`{ "prop": 5 }`), &v))
	assert.Equal(t, map[string]int{"prop": 5}, v)

	assert.Error(t, JSON([]byte("not json"), &v))
}

func TestTrimTrailingNewlines(t *testing.T) {
	assert.Equal(t, "a", TrimTrailingNewlines("a\n\n\n"))
	assert.Equal(t, "a\nb", TrimTrailingNewlines("a\nb\r\n"))
	assert.Equal(t, "", TrimTrailingNewlines("\n"))
}

func TestBufferConcurrentWrites(t *testing.T) {
	var buf Buffer
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = buf.Write([]byte("x"))
		}()
	}
	wg.Wait()
	assert.Len(t, buf.Bytes(), 10)
}

func TestTee(t *testing.T) {
	var a, b bytes.Buffer
	_, err := Tee(&a, &b).Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", a.String())
	assert.Equal(t, "hi", b.String())
}
