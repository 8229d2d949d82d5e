// Package chunk splits source files into named structural chunks so that
// summarization and analysis prompts can work on one construct at a time
// instead of a whole file.
package chunk

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Kind classifies what a chunk represents.
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindType     Kind = "type"
	KindClass    Kind = "class"
	KindTable    Kind = "table"
	KindFile     Kind = "file"
)

// Chunk is one structural unit extracted from a source file.
type Chunk struct {
	Name      string
	Kind      Kind
	Language  string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	Content   string
}

// pattern matches the opening line of a construct and captures its name.
type pattern struct {
	re   *regexp.Regexp
	kind Kind
}

var (
	goPatterns = []pattern{
		{regexp.MustCompile(`^func\s+\([^)]+\)\s+(\w+)`), KindMethod},
		{regexp.MustCompile(`^func\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`^type\s+(\w+)\s`), KindType},
	}
	pythonPatterns = []pattern{
		{regexp.MustCompile(`^class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)`), KindFunction},
	}
	jsPatterns = []pattern{
		{regexp.MustCompile(`^(?:export\s+)?class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s*\*?\s*(\w+)`), KindFunction},
		{regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function|\()`), KindFunction},
	}
	sqlPatterns = []pattern{
		{regexp.MustCompile(`(?i)^CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(\w+)`), KindTable},
		{regexp.MustCompile(`(?i)^CREATE\s+(?:OR\s+REPLACE\s+)?VIEW\s+(\w+)`), KindTable},
	}

	languages = map[string]struct {
		name     string
		patterns []pattern
	}{
		".go":  {"go", goPatterns},
		".py":  {"python", pythonPatterns},
		".js":  {"javascript", jsPatterns},
		".jsx": {"javascript", jsPatterns},
		".ts":  {"typescript", jsPatterns},
		".tsx": {"typescript", jsPatterns},
		".sql": {"sql", sqlPatterns},
	}
)

// Extract splits src into structural chunks based on the filename's
// extension. Files in languages without a scanner come back as a single
// whole-file chunk.
func Extract(filename, src string) []Chunk {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := languages[ext]
	if !ok {
		return wholeFile(filename, src, strings.TrimPrefix(ext, "."))
	}

	lines := strings.Split(src, "\n")

	// Find every construct-opening line first; each chunk then runs until
	// the next construct begins.
	type opening struct {
		line int // 0-based index into lines
		name string
		kind Kind
	}
	var openings []opening
	for i, line := range lines {
		for _, p := range lang.patterns {
			if match := p.re.FindStringSubmatch(line); match != nil {
				openings = append(openings, opening{line: i, name: match[1], kind: p.kind})
				break
			}
		}
	}
	if len(openings) == 0 {
		return wholeFile(filename, src, lang.name)
	}

	return lo.Map(openings, func(open opening, i int) Chunk {
		end := len(lines)
		if i+1 < len(openings) {
			end = openings[i+1].line
		}
		// Drop trailing blank lines so chunks end at their last statement.
		for end > open.line+1 && strings.TrimSpace(lines[end-1]) == "" {
			end--
		}
		return Chunk{
			Name:      open.name,
			Kind:      open.kind,
			Language:  lang.name,
			StartLine: open.line + 1,
			EndLine:   end,
			Content:   strings.Join(lines[open.line:end], "\n"),
		}
	})
}

func wholeFile(filename, src, language string) []Chunk {
	if language == "" {
		language = "text"
	}
	return []Chunk{{
		Name:      filepath.Base(filename),
		Kind:      KindFile,
		Language:  language,
		StartLine: 1,
		EndLine:   len(strings.Split(src, "\n")),
		Content:   src,
	}}
}
