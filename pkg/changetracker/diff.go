// Package changetracker renders diffs of applied changes and keeps backups of
// the content they replaced.
package changetracker

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// NumberOfContextLines is the context shown around each hunk.
const NumberOfContextLines = 3

// Diff is a line diff of one file.
type Diff struct {
	Path      string
	Additions int
	Deletions int
	// Unified is the diff in unified format, empty when nothing changed.
	Unified string
}

// Empty reports whether before and after were identical.
func (d *Diff) Empty() bool { return d.Additions == 0 && d.Deletions == 0 }

// Stat is a one-line summary such as "src/a.ts +3 -1".
func (d *Diff) Stat() string {
	return fmt.Sprintf("%s +%d -%d", d.Path, d.Additions, d.Deletions)
}

type lineOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

// GetDiff computes a line diff between two versions of path.
func GetDiff(path, originalCode, newCode string) *Diff {
	d := &Diff{Path: path}
	ops := lineOps(originalCode, newCode)
	for _, op := range ops {
		switch op.kind {
		case '+':
			d.Additions++
		case '-':
			d.Deletions++
		}
	}
	if d.Empty() {
		return d
	}
	d.Unified = unified(path, ops)
	return d
}

// lineOps diffs a and b line by line. Each distinct line is encoded as one
// rune so diffmatchpatch compares whole lines.
func lineOps(a, b string) []lineOp {
	var lines []string
	index := make(map[string]rune)
	encode := func(text string) []rune {
		var out []rune
		for _, line := range strings.SplitAfter(text, "\n") {
			if line == "" {
				continue
			}
			r, ok := index[line]
			if !ok {
				r = lineRune(len(lines))
				index[line] = r
				lines = append(lines, line)
			}
			out = append(out, r)
		}
		return out
	}
	ra, rb := encode(a), encode(b)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	var ops []lineOp
	for _, diff := range dmp.DiffMainRunes(ra, rb, false) {
		var kind byte
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			kind = ' '
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, r := range diff.Text {
			ops = append(ops, lineOp{kind: kind, text: lines[lineIndex(r)]})
		}
	}
	return ops
}

// lineRune maps a line index to a rune, skipping NUL and the surrogate range.
func lineRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

func lineIndex(r rune) int {
	if r >= 0xD800+0x800 {
		r -= 0x800
	}
	return int(r - 1)
}

func unified(path string, ops []lineOp) string {
	n := len(ops)
	oldAt := make([]int, n+1)
	newAt := make([]int, n+1)
	for i, op := range ops {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if op.kind != '+' {
			oldAt[i+1]++
		}
		if op.kind != '-' {
			newAt[i+1]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)

	ctx := NumberOfContextLines
	for i := 0; i < n; {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		start := max(0, i-ctx)
		end := i + 1
		for j := i + 1; j < n; {
			if ops[j].kind != ' ' {
				end = j + 1
				j++
				continue
			}
			k := j
			for k < n && ops[k].kind == ' ' {
				k++
			}
			if k == n || k-j > 2*ctx {
				break
			}
			j = k
		}
		stop := min(n, end+ctx)

		oldCount := oldAt[stop] - oldAt[start]
		newCount := newAt[stop] - newAt[start]
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", hunkStart(oldAt[start], oldCount), oldCount, hunkStart(newAt[start], newCount), newCount)
		for _, op := range ops[start:stop] {
			b.WriteByte(op.kind)
			b.WriteString(op.text)
			if !strings.HasSuffix(op.text, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
		i = stop
	}
	return b.String()
}

func hunkStart(offset, count int) int {
	if count == 0 {
		return offset
	}
	return offset + 1
}
