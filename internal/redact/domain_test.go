package redact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_DenyList(t *testing.T) {
	c := NewDomainChecker()
	checks := c.Check(context.Background(), "See https://example.com/page and https://www.yoursite.com.")
	require.Len(t, checks, 2)

	assert.Equal(t, "example.com", checks[0].Domain)
	assert.False(t, checks[0].Verified)
	assert.Equal(t, "placeholder or parking domain", checks[0].Reason)

	assert.Equal(t, "yoursite.com", checks[1].Domain)
	assert.False(t, checks[1].Verified)
}

func TestCheck_NoProbeAcceptsUnknownDomains(t *testing.T) {
	c := NewDomainChecker()
	checks := c.Check(context.Background(), "Visit https://acme-industrial.com for details")
	require.Len(t, checks, 1)
	assert.True(t, checks[0].Verified)
	assert.Equal(t, "acme-industrial.com", checks[0].Domain)
}

func TestCheck_Dedupes(t *testing.T) {
	c := NewDomainChecker()
	checks := c.Check(context.Background(), "https://a-corp.com and again https://a-corp.com")
	assert.Len(t, checks, 1)
}

func TestCheck_NoURLs(t *testing.T) {
	c := NewDomainChecker()
	assert.Empty(t, c.Check(context.Background(), "no links in this text"))
}

func TestProbe_ParkingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte("<html>This domain is for sale! Contact the broker.</html>"))
	}))
	defer srv.Close()

	c := NewDomainChecker(WithLiveProbe(true), WithProbeClient(srv.Client()))
	checks := c.Check(context.Background(), "found "+srv.URL)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].Verified)
	assert.Equal(t, "domain parking page", checks[0].Reason)
}

func TestProbe_HealthySite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>Industrial pumps and valves since 1953.</html>"))
	}))
	defer srv.Close()

	c := NewDomainChecker(WithLiveProbe(true), WithProbeClient(srv.Client()))
	checks := c.Check(context.Background(), "found "+srv.URL)
	require.Len(t, checks, 1)
	assert.True(t, checks[0].Verified)
}

func TestProbe_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewDomainChecker(WithLiveProbe(true), WithProbeClient(srv.Client()))
	checks := c.Check(context.Background(), "found "+srv.URL)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].Verified)
	assert.Contains(t, checks[0].Reason, "http status")
}

func TestProbe_UnreachableIsInvalidNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // probe target is gone

	c := NewDomainChecker(WithLiveProbe(true))
	checks := c.Check(context.Background(), "found "+srv.URL)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].Verified)
	assert.Equal(t, "unreachable", checks[0].Reason)
}
