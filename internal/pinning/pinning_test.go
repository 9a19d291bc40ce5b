package pinning

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	certA = []byte("certificate-a")
	certB = []byte("certificate-b")
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(map[string][][]byte{
		"api.example.com": {certA},
	})

	tests := []struct {
		name  string
		host  string
		chain [][]byte
		want  Decision
	}{
		{"pinned cert presented", "api.example.com", [][]byte{certA}, Accept},
		{"pinned cert deeper in chain", "api.example.com", [][]byte{certB, certA}, Accept},
		{"only other cert", "api.example.com", [][]byte{certB}, Reject},
		{"empty chain", "api.example.com", nil, Reject},
		{"host not pinned", "other.example.com", [][]byte{certB}, NoOpinion},
		{"host case insensitive", "API.Example.com", [][]byte{certA}, Accept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.host, tt.chain))
		})
	}
}

func TestNewValidator_CopiesInput(t *testing.T) {
	pin := []byte("pin")
	v := NewValidator(map[string][][]byte{"h": {pin}})
	pin[0] = 'x'

	assert.Equal(t, Accept, v.Validate("h", [][]byte{[]byte("pin")}))
}

func pemEncode(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestLoad_ResolvesNamedResources(t *testing.T) {
	fsys := fstest.MapFS{
		"certs/api.cer":  {Data: certA},
		"certs/cdn.pem":  {Data: pemEncode(certB)},
		"certs/notes.md": {Data: []byte("ignored")},
	}

	v, err := Load(fsys, "certs", map[string][]string{
		"api.example.com": {"api"},
		"cdn.example.com": {"cdn.pem"},
	})
	require.NoError(t, err)

	assert.Equal(t, Accept, v.Validate("api.example.com", [][]byte{certA}))
	assert.Equal(t, Accept, v.Validate("cdn.example.com", [][]byte{certB}))
	assert.Equal(t, Reject, v.Validate("cdn.example.com", [][]byte{certA}))
	assert.ElementsMatch(t, []string{"api.example.com", "cdn.example.com"}, v.Hosts())
}

func TestLoad_MissingResourceFailsEntirely(t *testing.T) {
	fsys := fstest.MapFS{
		"certs/api.cer": {Data: certA},
	}

	v, err := Load(fsys, "certs", map[string][]string{
		"api.example.com": {"api", "missing"},
	})
	assert.Nil(t, v)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResourceLoader_RejectsPEMWithoutCertificate(t *testing.T) {
	fsys := fstest.MapFS{
		"key.pem": {Data: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("k")})},
	}

	_, err := NewResourceLoader(fsys, "").Load("key.pem")
	assert.Error(t, err)
}

func TestResourceLoader_List(t *testing.T) {
	fsys := fstest.MapFS{
		"certs/a.cer":      {Data: certA},
		"certs/sub/b.pem":  {Data: pemEncode(certB)},
		"certs/readme.txt": {Data: []byte("x")},
	}

	names, err := NewResourceLoader(fsys, "certs").List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.cer", "sub/b.pem"}, names)
}

func TestVerifyConnectionFunc(t *testing.T) {
	verify := VerifyConnectionFunc(NewValidator(map[string][][]byte{"api.example.com": {certA}}))

	state := func(host string, raw []byte) tls.ConnectionState {
		return tls.ConnectionState{
			ServerName:       host,
			PeerCertificates: []*x509.Certificate{{Raw: raw}},
		}
	}

	assert.NoError(t, verify(state("api.example.com", certA)))
	assert.NoError(t, verify(state("other.example.com", certB)))
	assert.ErrorIs(t, verify(state("API.example.com", certB)), ErrPinMismatch)

	// IP hosts send no server name and are left to default verification
	assert.NoError(t, verify(state("", certB)))
}

func TestDialTLSContextFunc_AgainstTLSServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	serverCert := srv.Certificate().Raw

	tests := []struct {
		name    string
		pins    map[string][][]byte
		wantErr bool
	}{
		{"matching pin", map[string][][]byte{"127.0.0.1": {serverCert}}, false},
		{"mismatched pin", map[string][][]byte{"127.0.0.1": {certA}}, true},
		{"unpinned host", map[string][][]byte{"api.example.com": {certA}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := srv.Client().Transport.(*http.Transport).Clone()
			transport.DialTLSContext = DialTLSContextFunc(transport.TLSClientConfig, nil, NewValidator(tt.pins))
			client := &http.Client{Transport: transport}

			resp, err := client.Get(srv.URL)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrPinMismatch)
				return
			}
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "noOpinion", NoOpinion.String())
}
