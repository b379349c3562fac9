package chi

import (
	"mime"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

const jsonMediaType = "application/json"

// queryParam binds a form-style query parameter.
func queryParam(r *http.Request, name string, required bool) (string, error) {
	var v string
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), &v); err != nil {
		return "", err //nolint:wrapcheck // binding errors are reported to the client as-is
	}
	return v, nil
}

// isJSON reports whether the request declares a JSON body.
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == jsonMediaType
}
