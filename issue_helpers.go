package formskema

import "github.com/reoring/formskema/fieldpath"

// IssueAt builds an Issue located at the JSON Pointer of p.
func IssueAt(p fieldpath.Path, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// IssueKV is IssueAt with params given as alternating key/value pairs.
// Non-string keys and a trailing odd value are ignored.
func IssueKV(p fieldpath.Path, code, msg string, kv ...any) Issue {
	var params map[string]any
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		if params == nil {
			params = make(map[string]any, len(kv)/2)
		}
		params[k] = kv[i+1]
	}
	return IssueAt(p, code, msg, params)
}
