package httpadapter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openapiSpec []byte

var apiSpec = mustLoadSpec(openapiSpec)

func mustLoadSpec(raw []byte) *openapi3.T {
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		panic(fmt.Sprintf("load openapi spec: %v", err))
	}
	if err := doc.Validate(context.Background()); err != nil {
		panic(fmt.Sprintf("validate openapi spec: %v", err))
	}
	return doc
}

// validateRequestMiddleware checks requests for documented paths against the
// embedded OpenAPI document. Unknown paths and methods fall through to the mux.
func validateRequestMiddleware(doc *openapi3.T, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathItem := doc.Paths.Find(r.URL.Path)
		if pathItem == nil {
			next.ServeHTTP(w, r)
			return
		}
		operation := pathItem.GetOperation(r.Method)
		if operation == nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request: r,
			Route: &routers.Route{
				Spec:      doc,
				Path:      r.URL.Path,
				PathItem:  pathItem,
				Method:    r.Method,
				Operation: operation,
			},
			Options: &openapi3filter.Options{MultiError: false},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			field := strings.Join(schemaErr.JSONPointer(), ".")
			if field != "" {
				return fmt.Sprintf("invalid request body: %s: %s", field, schemaErr.Reason)
			}
			return "invalid request body: " + schemaErr.Reason
		}
		return reqErr.Error()
	}
	return err.Error()
}
