package classifier

import (
	"github.com/tidwall/gjson"

	"github.com/nhle/case-classifier/internal/model"
)

// parseResult decodes a 2xx payload. Members of "results" are visited in
// document order.
func parseResult(body []byte) *model.ClassificationResult {
	doc := gjson.ParseBytes(body)

	result := &model.ClassificationResult{
		Status: member(doc, "status").String(),
	}

	results := member(doc, "results")
	if !results.IsObject() {
		return result
	}

	results.ForEach(func(key, value gjson.Result) bool {
		result.Set(fieldFrom(key.String(), value))
		return true
	})

	return result
}

// fieldFrom maps a JSON value onto a Field. Falsy scalars (null, "", false,
// 0) are treated as absent; objects and arrays keep their raw JSON.
func fieldFrom(name string, value gjson.Result) model.Field {
	f := model.Field{Name: name}

	switch value.Type {
	case gjson.Null:
		return f
	case gjson.False:
		return f
	case gjson.Number:
		if value.Num == 0 {
			return f
		}
		f.Value = value.String()
	case gjson.String:
		f.Value = value.String()
	case gjson.True:
		f.Value = "true"
	default:
		f.Value = value.Raw
	}

	f.Present = f.Value != ""
	return f
}

// member returns the last top-level member called name, or an empty
// Result when doc is not an object or has no such member. gjson.Get
// would return the first of duplicated keys.
func member(doc gjson.Result, name string) gjson.Result {
	var found gjson.Result
	if !doc.IsObject() {
		return found
	}
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			found = value
		}
		return true
	})
	return found
}

// remoteMessage extracts the service-supplied error text from a failure
// payload. Any truthy "error" value is shown, non-strings as their JSON
// text; a falsy or missing one gives MessageRemoteFallback.
func remoteMessage(body []byte) string {
	if f := fieldFrom("error", member(gjson.ParseBytes(body), "error")); f.Present {
		return f.Value
	}
	return MessageRemoteFallback
}
