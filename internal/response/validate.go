package response

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"weedx-backend/pkg/apierror"
)

// ValidateRequired reports every field of data that is absent or empty.
// Empty follows the mobile API's historical rules: nil, "", "0", false, 0 and
// empty arrays or objects all count as missing.
func ValidateRequired(data map[string]any, fields ...string) error {
	missing := make([]string, 0)
	for _, field := range fields {
		value, ok := data[field]
		if !ok || isEmpty(value) {
			missing = append(missing, field)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return apierror.WithErrors(
		"Missing required fields: "+strings.Join(missing, ", "),
		http.StatusBadRequest,
		map[string]any{"missing_fields": missing},
	)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "0"
	case bool:
		return !v
	case float64:
		return v == 0
	case json.Number:
		return v.String() == "0"
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}

	return false
}
