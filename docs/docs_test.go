package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	Paths map[string]map[string]struct {
		Responses map[string]any `json:"responses"`
	} `json:"paths"`
}

func TestSwaggerDoc_SuccessCodes(t *testing.T) {
	var doc document
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	created := map[string]string{
		"/api/auth/register":           "post",
		"/api/kyc/submit":              "post",
		"/api/pix/transfer":            "post",
		"/api/pix/pay-qr":              "post",
		"/api/cards/create":            "post",
		"/api/admin/pix/deposit":       "post",
		"/api/admin/cards/{id}/charge": "post",
		"/api/admin/cards/{id}/refund": "post",
	}
	for path, methods := range doc.Paths {
		for method, op := range methods {
			want := "200"
			if created[path] == method {
				want = "201"
			}
			assert.Contains(t, op.Responses, want, "%s %s", method, path)
		}
	}
	for path, method := range created {
		require.Contains(t, doc.Paths, path)
		assert.NotContains(t, doc.Paths[path][method].Responses, "200", path)
	}
}
