package domain

// Document is the open-ended field-to-value record produced by the vision
// model for one page. Recognized fields (service_provider, merchant, amount,
// currency) are normalized by the validator; unknown fields pass through
// untouched.
type Document map[string]interface{}

// Clone returns a shallow copy of the document. Values are shared; only the
// top-level map is copied.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
