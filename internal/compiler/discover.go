package compiler

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"
)

// Discover expands glob patterns into the set of source files to compile.
// Patterns support *, ?, and ** for any number of path segments. A pattern
// without metacharacters must name an existing file.
func (c *Compiler) Discover(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		p = path.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if _, err := c.fs.Stat(pattern); err != nil {
				return nil, fmt.Errorf("source %s: %w", pattern, err)
			}
			add(pattern)
			continue
		}

		root := staticPrefix(pattern)
		walkErr := util.Walk(c.fs, root, func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if matchGlob(pattern, path.Clean(p)) {
				add(p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", root, walkErr)
		}
	}
	sort.Strings(out)
	return out, nil
}

// staticPrefix returns the directory part of the pattern before the first
// metacharacter, the walk root.
func staticPrefix(pattern string) string {
	segs := strings.Split(pattern, "/")
	var static []string
	for _, seg := range segs {
		if strings.ContainsAny(seg, "*?[") {
			break
		}
		static = append(static, seg)
	}
	if len(static) == 0 {
		return "."
	}
	if len(static) == len(segs) {
		return path.Dir(pattern)
	}
	root := path.Join(static...)
	// path.Join eats the empty leading segment of an absolute pattern.
	if strings.HasPrefix(pattern, "/") && !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return root
}

// matchGlob matches a slash-separated path against a pattern where **
// spans any number of segments and the rest follow path.Match rules.
func matchGlob(pattern, p string) bool {
	return matchSegments(strings.Split(path.Clean(pattern), "/"), strings.Split(p, "/"))
}

func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for skip := 0; skip <= len(segs); skip++ {
			if matchSegments(pat[1:], segs[skip:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}
