package redact

import "strings"

const (
	lineCommentMarker = "//"
	blockOpenMarker   = "/*"
	blockCloseMarker  = "*/"
)

// commentScanner tracks block-comment state across the lines of one file.
// The zero value starts outside any comment.
type commentScanner struct {
	inBlock bool
}

// eligible reports whether line is comment-classified, updating block state.
// A line containing the block opener is itself eligible; the closer takes
// effect only after its line is processed.
func (s *commentScanner) eligible(line string) bool {
	if strings.Contains(line, blockOpenMarker) {
		s.inBlock = true
	}
	ok := s.inBlock || strings.HasPrefix(strings.TrimSpace(line), lineCommentMarker)
	if strings.Contains(line, blockCloseMarker) {
		s.inBlock = false
	}
	return ok
}
