package describe

import (
	"strings"

	"github.com/tidwall/gjson"
)

type field string

const (
	fTitle       field = "title"
	fDescription field = "description"
	fCategory    field = "category"
	fSubject     field = "subject"
	fAction      field = "action"
	fLocation    field = "location"
	fObjects     field = "objects"
	fMood        field = "mood"
	fTags        field = "tags"
)

// aliases lists, per canonical field, the metadata keys accepted for it in
// priority order. Keys are compared lower-cased.
var aliases = []struct {
	field field
	keys  []string
}{
	{fTitle, []string{"title", "name", "clip_name", "video_title"}},
	{fDescription, []string{"description", "desc", "summary", "content"}},
	{fCategory, []string{"category", "type", "genre", "tag"}},
	{fSubject, []string{"subject", "topic", "theme", "focus"}},
	{fAction, []string{"action", "activity", "what", "shows"}},
	{fLocation, []string{"location", "place", "setting", "where"}},
	{fObjects, []string{"objects", "items", "products", "things"}},
	{fMood, []string{"mood", "tone", "atmosphere", "feeling"}},
	{fTags, []string{"tags", "keywords", "labels"}},
}

// nestedKeys hold a second level of metadata merged under the top level.
var nestedKeys = []string{"metadata", "meta", "details"}

var knownKeys = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, a := range aliases {
		for _, k := range a.keys {
			m[k] = struct{}{}
		}
	}
	for _, k := range nestedKeys {
		m[k] = struct{}{}
	}
	return m
}()

type extra struct {
	key   string
	value gjson.Result
}

type fields struct {
	known  map[field]gjson.Result
	extras []extra
}

func (f fields) has(k field) bool {
	_, ok := f.known[k]
	return ok
}

// extract maps a metadata object onto canonical fields. Top-level keys win
// over keys found under one of the nested containers.
func extract(obj gjson.Result) fields {
	lower := make(map[string]gjson.Result)
	var order []extra

	for _, nk := range nestedKeys {
		nested := lookupFold(obj, nk)
		if nested.IsObject() {
			collect(nested, lower, &order)
		}
	}
	collect(obj, lower, &order)

	out := fields{known: make(map[field]gjson.Result)}
	for _, a := range aliases {
		for _, k := range a.keys {
			if v, ok := lower[k]; ok && truthy(v) {
				out.known[a.field] = v
				break
			}
		}
	}

	seen := make(map[string]struct{})
	for _, e := range order {
		lk := strings.ToLower(e.key)
		if _, ok := knownKeys[lk]; ok {
			continue
		}
		if _, dup := seen[lk]; dup {
			continue
		}
		seen[lk] = struct{}{}
		v := lower[lk]
		if (v.Type == gjson.String || v.Type == gjson.Number) && truthy(v) {
			out.extras = append(out.extras, extra{key: e.key, value: v})
		}
	}
	return out
}

func collect(obj gjson.Result, lower map[string]gjson.Result, order *[]extra) {
	obj.ForEach(func(k, v gjson.Result) bool {
		lower[strings.ToLower(k.String())] = v
		*order = append(*order, extra{key: k.String(), value: v})
		return true
	})
}

func lookupFold(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if strings.EqualFold(k.String(), key) {
			found = v
			return false
		}
		return true
	})
	return found
}

// truthy reports whether v carries content: non-empty strings, arrays and
// objects, non-zero numbers and true.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	default:
		return false
	}
}
