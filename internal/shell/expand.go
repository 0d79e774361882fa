package shell

import (
	"regexp"
	"strings"
	"unicode"
)

// LookupFunc resolves an environment variable, reporting whether it is set.
type LookupFunc func(name string) (string, bool)

// varRef matches an escaped backslash, or $NAME and ${NAME} with group 1
// capturing a preceding backslash.
var varRef = regexp.MustCompile(`\\\\|(\\?)\$(?:([A-Za-z_][A-Za-z0-9_]*)|\{([A-Za-z_][A-Za-z0-9_]*)\})`)

// piece is a run of an expanded line. substituted marks text taken from a
// variable value; it is never scanned again.
type piece struct {
	text        string
	substituted bool
}

// word is one whitespace-separated field of an expanded line.
type word []piece

func (w word) String() string {
	var b strings.Builder
	for _, p := range w {
		b.WriteString(p.text)
	}
	return b.String()
}

// expandPieces replaces every variable reference in text, in a single pass.
// The first unset variable aborts the whole expansion. Escaped references
// and escaped backslashes are copied through untouched.
func expandPieces(text string, lookup LookupFunc) ([]piece, error) {
	var pieces []piece
	last := 0
	for _, m := range varRef.FindAllStringSubmatchIndex(text, -1) {
		if !strings.HasPrefix(text[m[0]:m[1]], "$") {
			continue
		}
		name := submatch(text, m, 2, 3)
		val, ok := lookup(name)
		if !ok {
			return nil, &UnboundVariableError{Name: name}
		}
		if m[0] > last {
			pieces = append(pieces, piece{text: text[last:m[0]]})
		}
		pieces = append(pieces, piece{text: val, substituted: true})
		last = m[1]
	}
	if last < len(text) {
		pieces = append(pieces, piece{text: text[last:]})
	}
	return pieces, nil
}

// expand is expandPieces rendered back into one string.
func expand(text string, lookup LookupFunc) (string, error) {
	pieces, err := expandPieces(text, lookup)
	if err != nil {
		return "", err
	}
	return word(pieces).String(), nil
}

// expandWords expands line and splits the result on whitespace.
func expandWords(line string, lookup LookupFunc) ([]word, error) {
	pieces, err := expandPieces(line, lookup)
	if err != nil {
		return nil, err
	}

	var (
		words []word
		cur   word
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, cur)
			cur = nil
		}
	}
	for _, p := range pieces {
		start := -1
		for i, r := range p.text {
			if !unicode.IsSpace(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				cur = append(cur, piece{text: p.text[start:i], substituted: p.substituted})
				start = -1
			}
			flush()
		}
		if start >= 0 {
			cur = append(cur, piece{text: p.text[start:], substituted: p.substituted})
		}
	}
	flush()
	return words, nil
}

// unescapeEcho substitutes \n, \t, \\ and \$. Anything else is kept as is.
func unescapeEcho(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			if r, ok := echoEscapes[text[i+1]]; ok {
				b.WriteByte(r)
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

var echoEscapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'\\': '\\',
	'$':  '$',
}

// submatch returns the first non-empty of the given capture groups.
func submatch(s string, m []int, groups ...int) string {
	for _, g := range groups {
		if m[2*g] >= 0 && m[2*g+1] > m[2*g] {
			return s[m[2*g]:m[2*g+1]]
		}
	}
	return ""
}
