package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "/data/count"},
			want: "rowview:data/count",
		},
		{
			name: "with query params sorted",
			key: Key{
				Endpoint: "/data",
				Query:    url.Values{"offset": {"20000"}, "limit": {"10000"}},
			},
			want: "rowview:data:limit=10000:offset=20000",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "rowview",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "/data",
		Query:    url.Values{"a": {"1"}, "b": {"2"}, "c": {"3"}},
	}

	first := key.String()
	for i := 0; i < 100; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}
