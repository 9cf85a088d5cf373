package store

// Merge applies a patch to a document. Objects are merged
// recursively, null values remove fields, anything else replaces
// the stored value. The document is modified in place and returned.
func Merge(doc, patch map[string]any) map[string]any {
	if doc == nil {
		doc = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(doc, k)
			continue
		}
		pm, ok := v.(map[string]any)
		if !ok {
			doc[k] = v
			continue
		}
		dm, ok := doc[k].(map[string]any)
		if !ok {
			dm = nil
		}
		doc[k] = Merge(dm, pm)
	}
	return doc
}
