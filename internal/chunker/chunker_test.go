package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleSource = `package testpkg

import "fmt"

// Greet prints a greeting message
func Greet(name string) {
	fmt.Println("Hello, " + name)
	fmt.Println("welcome")
	fmt.Println("enjoy")
}

// Farewell prints a goodbye message
func Farewell(name string) {
	fmt.Println("Goodbye, " + name)
	fmt.Println("see you")
	fmt.Println("later")
}
`

func TestChunkFile_Structural(t *testing.T) {
	c := New(DefaultConfig())
	chunks := c.ChunkFile("testpkg/simple.go", []byte(simpleSource))
	require.NotEmpty(t, chunks)

	// Every chunk carries a hash and a valid span.
	for _, chunk := range chunks {
		require.NoError(t, chunk.Validate())
		assert.Equal(t, "testpkg/simple.go", chunk.Path)
	}

	// The Greet function lands in a chunk together with its doc comment.
	var found bool
	for _, chunk := range chunks {
		if strings.Contains(chunk.Content, "func Greet") {
			found = true
			assert.Contains(t, chunk.Content, "// Greet prints a greeting message")
		}
	}
	assert.True(t, found, "expected a chunk containing Greet")
}

func TestChunkFile_CoversWholeFile(t *testing.T) {
	c := New(DefaultConfig())
	chunks := c.ChunkFile("testpkg/simple.go", []byte(simpleSource))
	require.NotEmpty(t, chunks)

	lineCount := len(strings.Split(strings.TrimSuffix(simpleSource, "\n"), "\n"))
	covered := make(map[int]bool)
	for _, chunk := range chunks {
		for l := chunk.StartLine; l <= chunk.EndLine; l++ {
			covered[l] = true
		}
	}
	for l := 1; l <= lineCount; l++ {
		assert.True(t, covered[l], "line %d not covered", l)
	}
}

func TestChunkFile_MergesSmallDeclarations(t *testing.T) {
	source := `package small

const A = 1

const B = 2

const C = 3

const D = 4
`
	c := New(DefaultConfig())
	chunks := c.ChunkFile("small.go", []byte(source))
	require.NotEmpty(t, chunks)

	// One-line consts merge rather than producing one chunk per const.
	assert.Less(t, len(chunks), 4)
}

func TestChunkFile_ParseErrorFallsBackToWindows(t *testing.T) {
	broken := "package broken\n\nfunc oops( {\n\tnot valid go\n"
	c := New(DefaultConfig())
	chunks := c.ChunkFile("broken.go", []byte(broken))

	// Fallback still covers the content.
	require.NotEmpty(t, chunks)
	assert.Equal(t, 1, chunks[0].StartLine)
}

func TestChunkFile_NonGoUsesWindows(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}

	c := New(Config{WindowLines: 50, WindowOverlap: 10})
	chunks := c.ChunkFile("notes.txt", []byte(sb.String()))
	require.Len(t, chunks, 3)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 50, chunks[0].EndLine)
	assert.Equal(t, 41, chunks[1].StartLine)
	assert.Equal(t, 90, chunks[1].EndLine)
	assert.Equal(t, 81, chunks[2].StartLine)
	assert.Equal(t, 120, chunks[2].EndLine)
}

func TestChunkFile_EmptyFile(t *testing.T) {
	c := New(DefaultConfig())
	assert.Empty(t, c.ChunkFile("empty.go", nil))
	assert.Empty(t, c.ChunkFile("empty.txt", []byte("")))
}

func TestChunkFile_IdenticalContentSharesHash(t *testing.T) {
	body := "func body() {\n\treturn\n}"
	c := New(Config{WindowLines: 50, WindowOverlap: 10})
	a := c.ChunkFile("a.txt", []byte(body))
	b := c.ChunkFile("b.txt", []byte(body))
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].ContentHash, b[0].ContentHash)
	assert.NotEqual(t, a[0].Path, b[0].Path)
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		parseErr error
		want     Strategy
	}{
		{"go file parses", "main.go", nil, StrategyStructural},
		{"go file with parse error", "main.go", errors.New("syntax error"), StrategyWindowed},
		{"non-go file", "README.md", nil, StrategyWindowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.path, tt.parseErr))
		})
	}
}
