package training

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeCollection parses an import document.
// PRE: data is the raw file body
// POST: returns the records in document order, or an error wrapping ErrImportInvalid
// INVARIANT: only id and trainerPanel are checked; other substructures pass through as decoded
func DecodeCollection(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			return nil, fmt.Errorf("%w: %v", ErrImportInvalid, err)
		}
		return nil, fmt.Errorf("%w: document is not an array", ErrImportInvalid)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an array", ErrImportInvalid)
	}

	records := make([]Record, 0, len(raw))
	for i, elem := range raw {
		var probe struct {
			ID           any             `json:"id"`
			TrainerPanel json.RawMessage `json:"trainerPanel"`
		}
		if err := json.Unmarshal(elem, &probe); err != nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrImportInvalid, i)
		}
		if id, ok := probe.ID.(string); !ok || id == "" {
			return nil, fmt.Errorf("%w: element %d has no id", ErrImportInvalid, i)
		}
		if t := bytes.TrimSpace(probe.TrainerPanel); len(t) == 0 || t[0] != '{' {
			return nil, fmt.Errorf("%w: element %d has no trainerPanel", ErrImportInvalid, i)
		}

		var rec Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				return nil, fmt.Errorf("%w: element %d: %s must not be %s", ErrImportInvalid, i, typeErr.Field, typeErr.Value)
			}
			return nil, fmt.Errorf("%w: element %d: %v", ErrImportInvalid, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
