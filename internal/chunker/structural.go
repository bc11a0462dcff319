package chunker

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/kettleby/autoctx/internal/fingerprint"
	"github.com/kettleby/autoctx/pkg/types"
)

// structuralSplitter emits one chunk per top-level declaration, merging
// consecutive declarations smaller than minLines. Residual top-level code
// (package clause, file comments) becomes the leading chunk.
type structuralSplitter struct {
	minLines int
}

func (s *structuralSplitter) Strategy() Strategy {
	return StrategyStructural
}

func (s *structuralSplitter) Split(path string, content []byte) ([]types.Chunk, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	lines := splitLines(content)
	if len(lines) == 0 {
		return nil, nil
	}

	// Cut the file at each declaration's start line, attaching doc
	// comments to their declaration. Everything before the first cut is
	// the preamble segment.
	cuts := make([]int, 0, len(file.Decls))
	for _, decl := range file.Decls {
		pos := decl.Pos()
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		case *ast.GenDecl:
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		}
		cuts = append(cuts, fset.Position(pos).Line)
	}

	segments := make([]span, 0, len(cuts)+1)
	if len(cuts) == 0 || cuts[0] > 1 {
		end := len(lines)
		if len(cuts) > 0 {
			end = cuts[0] - 1
		}
		segments = append(segments, span{start: 1, end: end})
	}
	for i, start := range cuts {
		end := len(lines)
		if i+1 < len(cuts) {
			end = cuts[i+1] - 1
		}
		segments = append(segments, span{start: start, end: end})
	}

	merged := mergeSmall(segments, s.minLines)

	chunks := make([]types.Chunk, 0, len(merged))
	for _, seg := range merged {
		if chunk, ok := buildChunk(path, lines, seg); ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// span is a 1-based inclusive line range.
type span struct {
	start int
	end   int
}

func (s span) lines() int {
	return s.end - s.start + 1
}

// mergeSmall merges consecutive segments until each emitted segment meets
// the soft minimum. The final segment may stay small.
func mergeSmall(segments []span, minLines int) []span {
	merged := make([]span, 0, len(segments))
	var pending *span
	for _, seg := range segments {
		if pending == nil {
			s := seg
			pending = &s
		} else {
			pending.end = seg.end
		}
		if pending.lines() >= minLines {
			merged = append(merged, *pending)
			pending = nil
		}
	}
	if pending != nil {
		merged = append(merged, *pending)
	}
	return merged
}

func buildChunk(path string, lines []string, seg span) (types.Chunk, bool) {
	start, end := seg.start, seg.end
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return types.Chunk{}, false
	}

	content := strings.Join(lines[start-1:end], "\n")
	if content == "" {
		return types.Chunk{}, false
	}

	return types.Chunk{
		Path:        path,
		StartLine:   start,
		EndLine:     end,
		Content:     content,
		ContentHash: fingerprint.Content([]byte(content)),
	}, true
}
