package restcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_URL(t *testing.T) {
	tests := []struct {
		name     string
		svc      Service
		fallback string
		want     string
		wantErr  bool
	}{
		{
			name: "joins base and path",
			svc:  Service{BaseURL: "https://api.example.com/v1/", Path: "/users"},
			want: "https://api.example.com/v1/users",
		},
		{
			name:     "falls back to client base",
			svc:      Service{Path: "users"},
			fallback: "https://api.example.com",
			want:     "https://api.example.com/users",
		},
		{
			name: "escapes path characters",
			svc:  Service{BaseURL: "https://api.example.com", Path: "files/my report.pdf"},
			want: "https://api.example.com/files/my%20report.pdf",
		},
		{
			name: "keeps query",
			svc:  Service{BaseURL: "https://api.example.com", Path: "search?q=go&page=2"},
			want: "https://api.example.com/search?q=go&page=2",
		},
		{
			name: "keeps encoded segments",
			svc:  Service{BaseURL: "https://api.example.com", Path: "a%2Fb"},
			want: "https://api.example.com/a%2Fb",
		},
		{
			name: "base only",
			svc:  Service{BaseURL: "https://api.example.com/ping"},
			want: "https://api.example.com/ping",
		},
		{
			name:    "missing scheme",
			svc:     Service{BaseURL: "api.example.com", Path: "users"},
			wantErr: true,
		},
		{
			name:    "no base at all",
			svc:     Service{Path: "users"},
			wantErr: true,
		},
		{
			name:    "bad host",
			svc:     Service{BaseURL: "https://[::1", Path: "users"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.svc.URL(tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindInvalidURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethod_Valid(t *testing.T) {
	for _, m := range []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions, MethodTrace, MethodConnect} {
		assert.True(t, m.Valid(), m)
	}
	assert.False(t, Method("get").Valid())
	assert.False(t, Method("FETCH").Valid())
}

func TestService_DefaultMethod(t *testing.T) {
	assert.Equal(t, MethodGet, (&Service{}).method())
	assert.Equal(t, MethodPut, (&Service{Method: MethodPut}).method())
}
