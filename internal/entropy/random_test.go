package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientEmptyKeyIsNil(t *testing.T) {
	if c := NewClient(""); c != nil {
		t.Fatal("expected nil client for empty key")
	}
	var c *Client
	if c.Enabled() {
		t.Fatal("nil client must not be enabled")
	}
}

func TestCryptoSeedNonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		if CryptoSeed() == 0 {
			t.Fatal("seed must be non-zero")
		}
	}
}

func TestSeedFromRandomOrg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params struct {
				APIKey string `json:"apiKey"`
				N      int    `json:"n"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "generateIntegers" || req.Params.APIKey != "k" || req.Params.N != 3 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"result":{"random":{"data":[1,2,3]}}}`))
	}))
	defer srv.Close()

	c := NewClient("k").WithEndpoint(srv.URL)
	want := int64(1)<<34 ^ int64(2)<<17 ^ int64(3)
	if got := Seed(c); got != want {
		t.Fatalf("seed = %d, want %d", got, want)
	}
}

func TestSeedFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient("k").WithEndpoint(srv.URL)
	if Seed(c) == 0 {
		t.Fatal("fallback seed must be non-zero")
	}
}
