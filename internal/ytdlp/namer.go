package ytdlp

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"
)

// counterMask bounds the sequence number so generated names stay within
// the integer range other tooling around these files expects.
const counterMask = 1<<53 - 1

// TempNamer hands out collision-free temp file names for credential
// material. Names combine a millisecond timestamp with a wrapping
// process-wide counter, so concurrent requests in the same millisecond
// still get distinct files.
type TempNamer struct {
	dir     string
	counter atomic.Uint64
}

// NewTempNamer creates a namer rooted at dir.
func NewTempNamer(dir string) *TempNamer {
	return &TempNamer{dir: dir}
}

// Next returns the next temp file path.
func (n *TempNamer) Next() string {
	seq := (n.counter.Add(1) - 1) & counterMask
	return filepath.Join(n.dir, fmt.Sprintf("cookies-%d-%d.txt", time.Now().UnixMilli(), seq))
}
