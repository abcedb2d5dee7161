package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"github.com/rohmanhakim/pjax-nav/pkg/urlutil"
)

/*
Responsibilities

- Perform the partial-navigation GET
- Mark the request with the pjax header so a cooperating server answers with a fragment
- Apply the configured timeout and cache-busting parameter
- Classify responses

Fetch Semantics

- Exactly one HTTP request per Fetch call; no retries
- Only 2xx responses yield a result
- Cancellation through ctx is reported as ErrCauseCancelled and is not recorded as an error
- Every completed round trip is recorded with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

// HeaderPJAX marks a request as a partial-navigation fetch.
const HeaderPJAX = "X-PJAX"

const maxRedirects = 10

type PjaxFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
	now          func() time.Time
}

func NewPjaxFetcher(
	metadataSink metadata.MetadataSink,
	timeout time.Duration,
	userAgent string,
) *PjaxFetcher {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &PjaxFetcher{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				// redirected requests must still ask for the fragment
				if via[0].Header.Get(HeaderPJAX) != "" {
					req.Header.Set(HeaderPJAX, "true")
				}
				return nil
			},
		},
		userAgent: userAgent,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for cache-busting timestamps.
func (p *PjaxFetcher) WithClock(now func() time.Time) *PjaxFetcher {
	p.now = now
	return p
}

func (p *PjaxFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "PjaxFetcher.Fetch"
	startTime := time.Now()

	target := fetchParam.URL()
	if fetchParam.CacheBust() {
		target = urlutil.WithCacheBuster(target, p.now())
	}

	result, err := p.performFetch(ctx, target, !fetchParam.FullPage())
	duration := time.Since(startTime)

	if err != nil {
		if !err.IsCancelled() {
			p.metadataSink.RecordFetch(target.String(), err.StatusCode, duration, "", 0)
			p.recordFetchError(callerMethod, target, err)
		}
		return FetchResult{}, err
	}

	p.metadataSink.RecordFetch(
		target.String(),
		result.Code(),
		duration,
		result.ContentType(),
		len(result.Body()),
	)
	return result, nil
}

func (p *PjaxFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err *FetchError) {
	p.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			metadata.NewAttr(metadata.AttrMessage, err.Message),
			metadata.NewAttr(metadata.AttrHTTPStatus, strconv.Itoa(err.StatusCode)),
		},
	)
}

func (p *PjaxFetcher) performFetch(ctx context.Context, fetchUrl url.URL, fragment bool) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
		}
	}

	for key, value := range requestHeaders(p.userAgent, fragment) {
		req.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return FetchResult{}, &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequest4xx,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 400:
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 300:
		// the client follows redirects, so a 3xx here has no usable Location
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if fetchErr := classifyTransportError(ctx, err); fetchErr.IsCancelled() {
			return FetchResult{}, fetchErr
		}
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			contentType:         resp.Header.Get("Content-Type"),
			responseHeaders:     responseHeaders,
		},
	}, nil
}

func classifyTransportError(ctx context.Context, err error) *FetchError {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &FetchError{
			Message:   "request aborted",
			Retryable: false,
			Cause:     ErrCauseCancelled,
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}

	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func requestHeaders(userAgent string, fragment bool) map[string]string {
	headers := map[string]string{
		"Accept": "text/html, */*; q=0.01",
	}
	if fragment {
		headers[HeaderPJAX] = "true"
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return headers
}
