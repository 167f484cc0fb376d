// Package describe turns free-form clip metadata into the short text
// descriptions used for semantic matching.
package describe

import (
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/types"
)

const (
	maxDescriptionRunes = 100
	maxTags             = 3
	genericDescription  = "B-roll video clip"
)

// All parses a JSON object of clip_id -> metadata and describes every clip in
// document order. Metadata may be an object or a JSON string holding one.
// A clip whose metadata cannot be read gets "B-roll clip <id>" and a warning.
func All(raw []byte, log *logger.Logger) ([]types.ClipDescription, error) {
	const op = "describe clips"
	if log == nil {
		log = logger.Nop()
	}
	if !gjson.ValidBytes(raw) {
		return nil, errs.Errorf(errs.KindInput, op, "clip metadata is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, errs.Errorf(errs.KindInput, op, "clip metadata must be an object keyed by clip id")
	}

	var out []types.ClipDescription
	root.ForEach(func(k, v gjson.Result) bool {
		id := k.String()
		text, ok := Clip(v)
		if !ok {
			log.Warn("clip metadata unreadable, using placeholder", "clip_id", id, "kind", v.Type.String())
			text = "B-roll clip " + id
		}
		out = append(out, types.ClipDescription{ClipID: id, Description: text})
		return true
	})
	return out, nil
}

// Clip describes one clip. ok is false when meta is neither an object nor a
// string containing a JSON object.
func Clip(meta gjson.Result) (string, bool) {
	if meta.Type == gjson.String {
		if !gjson.Valid(meta.Str) {
			return "", false
		}
		meta = gjson.Parse(meta.Str)
	}
	if !meta.IsObject() {
		return "", false
	}
	return build(extract(meta)), true
}

func build(f fields) string {
	var parts []string
	str := func(k field) string { return cast.ToString(f.known[k].Value()) }

	if f.has(fTitle) {
		parts = append(parts, str(fTitle))
	}
	switch {
	case f.has(fAction):
		parts = append(parts, "shows "+str(fAction))
	case f.has(fSubject):
		parts = append(parts, "features "+str(fSubject))
	}
	if f.has(fObjects) {
		parts = append(parts, "with "+joinList(f.known[fObjects], 0))
	}
	if f.has(fLocation) {
		parts = append(parts, "at "+str(fLocation))
	}
	if f.has(fDescription) {
		desc := truncate(str(fDescription), maxDescriptionRunes)
		if len(parts) > 0 {
			desc = "- " + desc
		}
		parts = append(parts, desc)
	}
	if f.has(fCategory) && len(parts) == 0 {
		parts = append(parts, str(fCategory)+" clip")
	}
	if f.has(fMood) && len(parts) < 3 {
		parts = append(parts, "("+str(fMood)+" tone)")
	}
	if f.has(fTags) && len(parts) < 2 {
		parts = append(parts, "["+joinList(f.known[fTags], maxTags)+"]")
	}

	if len(parts) > 0 {
		return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	}
	if len(f.extras) > 0 {
		return cast.ToString(f.extras[0].value.Value())
	}
	return genericDescription
}

// joinList renders arrays as a comma-separated list, keeping at most limit
// items when limit > 0. Scalars are rendered as-is.
func joinList(v gjson.Result, limit int) string {
	if !v.IsArray() {
		return cast.ToString(v.Value())
	}
	items := cast.ToStringSlice(v.Value())
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
