package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	perr "magnetinfo/internal/platform/errors"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/go-chi/chi/v5"
)

const link = "magnet:?xt=urn:btih:abcdef"

// fakeService records the last call and answers with a fixed result
type fakeService struct {
	mu       sync.Mutex
	calls    int
	id       string
	deadline time.Duration
	out      domain.ResolvedMetadata
	err      error
}

func (f *fakeService) Resolve(_ context.Context, id string, d time.Duration) (domain.ResolvedMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.id, f.deadline = id, d
	return f.out, f.err
}

const maxDeadline = 2 * time.Minute

func serve(t *testing.T, f *fakeService, req *stdhttp.Request) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), f, maxDeadline)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not an envelope: %v (%s)", err, rr.Body.String())
	}
	return rr, env
}

func post(body string) *stdhttp.Request {
	req := httptest.NewRequest(stdhttp.MethodPost, "/info", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPostInfo_Success(t *testing.T) {
	f := &fakeService{out: domain.ResolvedMetadata{Name: "sample.iso", SessionKey: "abcdef", TotalSizeBytes: 3221225472, FormattedSize: "3.00 GB"}}
	rr, env := serve(t, f, post(`{"magnet_link":"`+link+`","timeout_ms":1500}`))

	if rr.Code != stdhttp.StatusOK || env.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d / %d", rr.Code, env.StatusCode)
	}
	data, _ := env.Data.(map[string]any)
	if data["name"] != "sample.iso" || data["formatted_size"] != "3.00 GB" || data["info_hash"] != "abcdef" {
		t.Fatalf("data = %v", env.Data)
	}
	if f.id != link || f.deadline != 1500*time.Millisecond {
		t.Fatalf("service called with %q %v", f.id, f.deadline)
	}
}

func TestPostInfo_DefaultDeadlineIsZero(t *testing.T) {
	f := &fakeService{}
	serve(t, f, post(`{"magnet_link":"`+link+`"}`))
	if f.calls != 1 || f.deadline != 0 {
		t.Fatalf("calls = %d, deadline = %v", f.calls, f.deadline)
	}
}

func TestPostInfo_RejectedBeforeService(t *testing.T) {
	cases := map[string]string{
		"blank link":      `{"magnet_link":"   "}`,
		"missing link":    `{}`,
		"unknown field":   `{"magnet_link":"` + link + `","magnet":"x"}`,
		"invalid json":    `{"magnet_link":`,
		"negative timout": `{"magnet_link":"` + link + `","timeout_ms":-5}`,
		"oversized body":  `{"magnet_link":"` + link + strings.Repeat("a", MaxBodyBytes) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f := &fakeService{}
			rr, env := serve(t, f, post(body))
			if rr.Code != stdhttp.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rr.Code, rr.Body.String())
			}
			if env.Error == "" {
				t.Fatalf("envelope missing error")
			}
			if f.calls != 0 {
				t.Fatalf("service reached")
			}
		})
	}
}

func TestInfo_ErrorKindMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   perr.ErrorCode
	}{
		{domain.NewError(domain.KindInvalidIdentifier, "missing magnet link", nil), stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{domain.NewError(domain.KindSwarmError, "invalid magnet link", nil), stdhttp.StatusBadGateway, perr.ErrorCodeUpstream},
		{domain.NewError(domain.KindTimeout, domain.TimeoutMessage, context.DeadlineExceeded), stdhttp.StatusGatewayTimeout, perr.ErrorCodeTimeout},
		{domain.NewError(domain.KindCanceled, "resolution canceled by caller", context.Canceled), stdhttp.StatusServiceUnavailable, perr.ErrorCodeCanceled},
	}
	for _, tc := range cases {
		f := &fakeService{err: tc.err}
		rr, env := serve(t, f, post(`{"magnet_link":"`+link+`"}`))
		if rr.Code != tc.status || env.Code != tc.code {
			t.Fatalf("%v: status = %d code = %d, want %d / %d", tc.err, rr.Code, env.Code, tc.status, tc.code)
		}
	}
}

func TestInfo_SwarmMessageSurfaced(t *testing.T) {
	f := &fakeService{err: domain.NewError(domain.KindSwarmError, "no peers reachable", nil)}
	_, env := serve(t, f, post(`{"magnet_link":"`+link+`"}`))
	if env.Error != "failed to get torrent info: no peers reachable" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestGetInfo_Query(t *testing.T) {
	f := &fakeService{out: domain.ResolvedMetadata{Name: "q"}}
	req := httptest.NewRequest(stdhttp.MethodGet, "/info?magnet="+strings.ReplaceAll(link, "&", "%26")+"&timeout_ms=250", nil)
	rr, _ := serve(t, f, req)
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	if f.id != link || f.deadline != 250*time.Millisecond {
		t.Fatalf("service called with %q %v", f.id, f.deadline)
	}
}

func TestGetInfo_BadTimeout(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1"} {
		f := &fakeService{}
		req := httptest.NewRequest(stdhttp.MethodGet, "/info?magnet=x&timeout_ms="+raw, nil)
		rr, env := serve(t, f, req)
		if rr.Code != stdhttp.StatusBadRequest || env.Code != perr.ErrorCodeValidation {
			t.Fatalf("timeout_ms=%s: status = %d code = %d", raw, rr.Code, env.Code)
		}
		if f.calls != 0 {
			t.Fatalf("service reached")
		}
	}
}

func TestInfo_TimeoutAboveMaxRejected(t *testing.T) {
	over := maxDeadline.Milliseconds() + 1
	reqs := map[string]*stdhttp.Request{
		"post": post(`{"magnet_link":"` + link + `","timeout_ms":` + strconv.FormatInt(over, 10) + `}`),
		"get":  httptest.NewRequest(stdhttp.MethodGet, "/info?magnet=x&timeout_ms="+strconv.FormatInt(over, 10), nil),
	}
	for name, req := range reqs {
		f := &fakeService{}
		rr, env := serve(t, f, req)
		if rr.Code != stdhttp.StatusBadRequest || env.Code != perr.ErrorCodeValidation || env.Field != "timeout_ms" {
			t.Fatalf("%s: status = %d envelope = %+v", name, rr.Code, env)
		}
		if env.Error != "timeout_ms must be at most 120000" {
			t.Fatalf("%s: error = %q", name, env.Error)
		}
		if f.calls != 0 {
			t.Fatalf("%s: service reached", name)
		}
	}

	f := &fakeService{}
	body := `{"magnet_link":"` + link + `","timeout_ms":` + strconv.FormatInt(maxDeadline.Milliseconds(), 10) + `}`
	if rr, _ := serve(t, f, post(body)); rr.Code != stdhttp.StatusOK || f.deadline != maxDeadline {
		t.Fatalf("at max: status = %d deadline = %v", rr.Code, f.deadline)
	}
}
