package chunker

import (
	"strings"

	"github.com/kettleby/autoctx/internal/fingerprint"
	"github.com/kettleby/autoctx/pkg/types"
)

// windowSplitter emits fixed-size overlapping windows. It is the fallback
// for files that cannot be parsed structurally, so no content is ever
// silently dropped.
type windowSplitter struct {
	lines   int
	overlap int
}

func (w *windowSplitter) Strategy() Strategy {
	return StrategyWindowed
}

func (w *windowSplitter) Split(path string, content []byte) ([]types.Chunk, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil, nil
	}

	step := w.lines - w.overlap
	if step < 1 {
		step = 1
	}

	chunks := make([]types.Chunk, 0, len(lines)/step+1)
	for start := 0; start < len(lines); start += step {
		end := start + w.lines
		if end > len(lines) {
			end = len(lines)
		}

		text := strings.Join(lines[start:end], "\n")
		if text != "" {
			chunks = append(chunks, types.Chunk{
				Path:        path,
				StartLine:   start + 1,
				EndLine:     end,
				Content:     text,
				ContentHash: fingerprint.Content([]byte(text)),
			})
		}

		if end == len(lines) {
			break
		}
	}
	return chunks, nil
}
