package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/brollplan/internal/types"
)

const (
	charBudget = 42
	wordBudget = 9
)

// RenderNarrationASS renders narration captions for burn-in over the final
// cut. Long segments are split into lines that share the segment's time span
// in proportion to their length.
func RenderNarrationASS(segs []types.Segment) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, s := range segs {
		for _, ln := range splitSegment(s) {
			b.WriteString("Dialogue: 0,")
			b.WriteString(assTime(ln.Start))
			b.WriteString(",")
			b.WriteString(assTime(ln.End))
			b.WriteString(",Caption,,0,0,0,,")
			b.WriteString(ln.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

type line struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

func splitSegment(s types.Segment) []line {
	words := strings.Fields(sanitizeASS(s.Text))
	if len(words) == 0 || s.EndTime <= s.StartTime {
		return nil
	}
	texts := packWords(words)

	total := 0
	for _, t := range texts {
		total += len([]rune(t))
	}
	start := dur(s.StartTime)
	span := dur(s.EndTime) - start

	out := make([]line, 0, len(texts))
	cur := start
	acc := 0
	for i, t := range texts {
		acc += len([]rune(t))
		end := start + time.Duration(float64(span)*float64(acc)/float64(total))
		if i == len(texts)-1 {
			end = dur(s.EndTime)
		}
		out = append(out, line{Start: cur, End: end, Text: t})
		cur = end
	}
	return out
}

// packWords groups words into lines bounded by charBudget and wordBudget.
func packWords(words []string) []string {
	var out []string
	var cur []string
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur) > 0 && (len(cur) >= wordBudget || nextLen > charBudget) {
			out = append(out, strings.Join(cur, " "))
			cur = nil
			curLen = 0
			nextLen = wl
		}
		cur = append(cur, w)
		curLen = nextLen
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, Inter, 56, &H00FFFFFF, &H00FFFFFF, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,4,1,2, 80,80,60,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
