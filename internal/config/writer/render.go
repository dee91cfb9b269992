package writer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// commentWidth is the wrap column for description comments, excluding the
// comment prefix.
const commentWidth = 76

// writeComment emits a description as a wrapped comment block. Empty
// descriptions produce no output.
func writeComment(b *strings.Builder, desc string) {
	desc = strings.TrimRight(desc, "\n")
	if desc == "" {
		return
	}
	for _, line := range strings.Split(wordwrap.WrapString(desc, commentWidth), "\n") {
		if line == "" {
			b.WriteString("--\n")
			continue
		}
		b.WriteString("-- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// quoteScript quotes a string as a settings-file literal. The file is
// re-evaluated as Lua 5.1, which has no hex escapes, so non-printable
// bytes use zero-padded decimal \ddd escapes instead of Go syntax.
// Printable bytes, including multi-byte UTF-8, pass through verbatim.
func quoteScript(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			// Zero-padded so a digit following the escape cannot extend it.
			fmt.Fprintf(&b, `\%03d`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// renderValue serializes a configuration value as a settings-file literal.
// Mappings are emitted with alphabetically sorted keys so output is
// reproducible regardless of insertion order.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return quoteScript(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		return renderSequence(val)
	case []string:
		seq := make([]any, len(val))
		for i, s := range val {
			seq[i] = s
		}
		return renderSequence(seq)
	case map[string]any:
		return renderMapping(val)
	default:
		// Unknown shapes degrade to their string form, quoted so the file
		// stays loadable.
		return quoteScript(fmt.Sprintf("%v", val))
	}
}

// renderSequence serializes an ordered sequence of scalars.
func renderSequence(seq []any) string {
	if len(seq) == 0 {
		return "{}"
	}
	parts := make([]string, len(seq))
	for i, e := range seq {
		parts[i] = renderValue(e)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// renderMapping serializes a mapping with sorted keys, one per line.
func renderMapping(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range keys {
		b.WriteString("    [")
		b.WriteString(quoteScript(k))
		b.WriteString("] = ")
		b.WriteString(renderValue(m[k]))
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return b.String()
}
