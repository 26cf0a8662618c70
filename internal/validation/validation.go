package validation

import (
	"encoding/json"
	"net/http"
	"strings"

	"staged/internal/errors"
)

type Validator interface {
	Validate() error
}

// maxBodyBytes bounds request bodies; edits carry unified diffs.
const maxBodyBytes = 4 << 20

// DecodeRequest decodes a JSON body into T and validates it.
func DecodeRequest[T Validator](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, errors.ValidationError("invalid request body", err.Error())
	}

	if err := v.Validate(); err != nil {
		return v, err
	}

	return v, nil
}

// RequireQuery returns the named query parameters, failing when any is
// missing or blank.
func RequireQuery(r *http.Request, names ...string) (map[string]string, error) {
	q := r.URL.Query()
	values := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, errors.ValidationError("missing query parameters: "+strings.Join(missing, ", "), missing)
	}
	return values, nil
}

// QueryDefault returns the query parameter or def when it is blank.
func QueryDefault(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return v
	}
	return def
}
