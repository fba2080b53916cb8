package account

import "encoding/json"

// MergeJSON applies a partial update, given as a raw JSON object, over
// an account. Fields present in the update win; everything else keeps
// its previous value. This mirrors the backend's shallow-merge profile
// semantics, so unknown fields in the update are ignored rather than
// rejected.
func MergeJSON(base *Account, update json.RawMessage) (*Account, error) {
	merged := map[string]json.RawMessage{}

	if base != nil {
		raw, err := json.Marshal(base)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &merged); err != nil {
			return nil, err
		}
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(update, &patch); err != nil {
		return nil, err
	}
	for k, v := range patch {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	out := &Account{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Merge applies a typed partial update over base and returns the
// result. It round-trips through JSON so the merge semantics stay
// identical to MergeJSON.
func Merge(base *Account, update any) (*Account, error) {
	raw, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}
	return MergeJSON(base, raw)
}
