package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/remiblancher/capikey/internal/api/dto"
	"github.com/remiblancher/capikey/internal/api/middleware"
)

// =============================================================================
// Helpers
// =============================================================================

const testXML = `<RSAKeyValue><Modulus>oaGhoQ==</Modulus><Exponent>AQAB</Exponent></RSAKeyValue>`

func newTestRouter() http.Handler {
	return New(&Config{Version: "test", StrictXML: true, MaxBodyBytes: 1 << 16})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// privateXML returns a 32-bit RSAKeyValue with every element populated.
func privateXML() string {
	b := func(n int, v byte) string {
		return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{v}, n))
	}
	return "<RSAKeyValue>" +
		"<Modulus>" + b(4, 0xA1) + "</Modulus>" +
		"<Exponent>AQAB</Exponent>" +
		"<P>" + b(2, 0xB1) + "</P>" +
		"<Q>" + b(2, 0xB2) + "</Q>" +
		"<DP>" + b(2, 0xB3) + "</DP>" +
		"<DQ>" + b(2, 0xB4) + "</DQ>" +
		"<InverseQ>" + b(2, 0xB5) + "</InverseQ>" +
		"<D>" + b(4, 0xC1) + "</D>" +
		"</RSAKeyValue>"
}

// =============================================================================
// Health Tests
// =============================================================================

func TestU_Health(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode[dto.HealthResponse](t, rec)
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected health response: %+v", resp)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestU_Ready(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/ready", nil)
	resp := decode[dto.ReadyResponse](t, rec)
	if !resp.Ready {
		t.Error("server should be ready")
	}
}

// =============================================================================
// Blob Tests
// =============================================================================

func TestU_BuildThenParse(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: privateXML(), Private: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("build status = %d: %s", rec.Code, rec.Body.String())
	}
	built := decode[dto.BlobResponse](t, rec)
	if built.BitLength != 32 || !built.Private {
		t.Errorf("unexpected build response: %+v", built)
	}
	// 20 + 4 + 5*2 + 4
	if built.Size != 38 {
		t.Errorf("size = %d, want 38", built.Size)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/blob/parse", dto.BlobParseRequest{Blob: built.Blob, IncludePrivate: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d: %s", rec.Code, rec.Body.String())
	}
	parsed := decode[dto.BlobParseResponse](t, rec)
	if parsed.Type != "PRIVATEKEYBLOB" || parsed.Magic != "RSA2" {
		t.Errorf("unexpected parse response: %+v", parsed)
	}
	if parsed.Fingerprint != built.Fingerprint {
		t.Error("fingerprint changed across build and parse")
	}
	if !strings.Contains(parsed.XML, "<D>") {
		t.Error("private XML should contain D")
	}
}

func TestU_ParseWithoutPrivate(t *testing.T) {
	h := newTestRouter()
	built := decode[dto.BlobResponse](t, do(t, h, http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: privateXML(), Private: true}))

	parsed := decode[dto.BlobParseResponse](t, do(t, h, http.MethodPost, "/api/v1/blob/parse", dto.BlobParseRequest{Blob: built.Blob}))
	if strings.Contains(parsed.XML, "<D>") {
		t.Error("public XML should not contain D")
	}
	if !parsed.Private {
		t.Error("blob itself is still private")
	}
}

func TestU_Weaken(t *testing.T) {
	h := newTestRouter()
	built := decode[dto.BlobResponse](t, do(t, h, http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: privateXML(), Private: true}))

	rec := do(t, h, http.MethodPost, "/api/v1/blob/weaken", dto.BlobWeakenRequest{Blob: built.Blob})
	if rec.Code != http.StatusOK {
		t.Fatalf("weaken status = %d: %s", rec.Code, rec.Body.String())
	}
	weak := decode[dto.BlobResponse](t, rec)
	data, err := weak.Blob.Decode()
	if err != nil {
		t.Fatal(err)
	}
	// pubexp at offset 16
	if !bytes.Equal(data[16:20], []byte{1, 0, 0, 0}) {
		t.Errorf("exponent region = % x, want 01 00 00 00", data[16:20])
	}
}

func TestU_WeakenPublicBlob(t *testing.T) {
	h := newTestRouter()
	built := decode[dto.BlobResponse](t, do(t, h, http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: testXML}))

	rec := do(t, h, http.MethodPost, "/api/v1/blob/weaken", dto.BlobWeakenRequest{Blob: built.Blob})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestU_Layout(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/api/v1/layout/1024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[dto.LayoutResponse](t, rec)
	if resp.PublicSize != 148 || resp.PrivateSize != 596 {
		t.Errorf("sizes = %d/%d, want 148/596", resp.PublicSize, resp.PrivateSize)
	}
	if len(resp.Regions) != 10 {
		t.Errorf("regions = %d, want 10", len(resp.Regions))
	}
}

func TestU_Redact(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodPost, "/api/v1/xml/redact", dto.XMLRedactRequest{XML: privateXML()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.XMLRedactResponse](t, rec)
	for _, tag := range []string{"<P>", "<Q>", "<DP>", "<DQ>", "<InverseQ>", "<D>"} {
		if strings.Contains(resp.XML, tag) {
			t.Errorf("redacted XML still contains %s", tag)
		}
	}
}

// =============================================================================
// Error Mapping Tests
// =============================================================================

func TestU_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"layout not integer", http.MethodGet, "/api/v1/layout/abc", nil, 400, "INVALID_REQUEST"},
		{"layout odd size", http.MethodGet, "/api/v1/layout/1000", nil, 422, "INVALID_KEY_SIZE"},
		{"parse bad base64", http.MethodPost, "/api/v1/blob/parse", dto.BlobParseRequest{Blob: dto.BinaryData{Data: "!!"}}, 400, "INVALID_REQUEST"},
		{"parse truncated", http.MethodPost, "/api/v1/blob/parse", dto.BlobParseRequest{Blob: dto.NewBase64([]byte{6, 2})}, 400, "TRUNCATED_DATA"},
		{"parse unsupported type", http.MethodPost, "/api/v1/blob/parse", dto.BlobParseRequest{Blob: dto.NewBase64(make([]byte, 20))}, 422, "UNSUPPORTED_BLOB_TYPE"},
		{"build invalid xml", http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: "<RSAKeyValue><Modulus>"}, 400, "INVALID_XML"},
		{"build public as private", http.MethodPost, "/api/v1/blob/build", dto.BlobBuildRequest{XML: testXML, Private: true}, 422, "INCOMPLETE_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(), tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			apiErr := decode[dto.APIError](t, rec)
			if apiErr.Code != tt.code {
				t.Errorf("code = %s, want %s", apiErr.Code, tt.code)
			}
		})
	}
}

func TestU_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blob/parse", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
