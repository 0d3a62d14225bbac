package docs

import (
	"encoding/json"
	"testing"
)

// The docs package is a committed artifact; this guards against it drifting
// out of sync with the handler annotations (an empty or stale paths block
// renders a blank swagger UI).
func TestSwaggerSpec_CoversAllRoutes(t *testing.T) {
	var spec struct {
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &spec); err != nil {
		t.Fatalf("rendered swagger spec is not valid JSON: %v", err)
	}

	wantOps := map[string][]string{
		"/documents":      {"get", "post"},
		"/documents/{id}": {"delete"},
		"/jobs/{id}":      {"get"},
		"/query":          {"post"},
		"/summary":        {"post"},
	}
	for path, methods := range wantOps {
		ops, ok := spec.Paths[path]
		if !ok {
			t.Errorf("path %s missing from swagger spec", path)
			continue
		}
		for _, m := range methods {
			if _, ok := ops[m]; !ok {
				t.Errorf("path %s missing %s operation", path, m)
			}
		}
	}

	for _, def := range []string{
		"api.AnswerResponse", "api.DocumentInfo", "api.InitJobResponse",
		"api.JobResponse", "api.QueryRequest", "api.SummaryResponse",
	} {
		if _, ok := spec.Definitions[def]; !ok {
			t.Errorf("definition %s missing from swagger spec", def)
		}
	}
}
