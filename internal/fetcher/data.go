package fetcher

import (
	"net/url"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	cacheBust bool
	fullPage  bool
}

// NewFetchParam describes a fragment fetch for a navigation.
func NewFetchParam(fetchUrl url.URL, cacheBust bool) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		cacheBust: cacheBust,
	}
}

// NewPageFetchParam describes a plain document load: no pjax header
// and no cache-busting parameter.
func NewPageFetchParam(fetchUrl url.URL) FetchParam {
	return FetchParam{
		fetchUrl: fetchUrl,
		fullPage: true,
	}
}

func (f FetchParam) URL() url.URL {
	return f.fetchUrl
}

func (f FetchParam) CacheBust() bool {
	return f.cacheBust
}

func (f FetchParam) FullPage() bool {
	return f.fullPage
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

type ResponseMeta struct {
	statusCode          int
	transferredSizeByte uint64
	contentType         string
	responseHeaders     map[string]string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
	responseHeaders map[string]string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			transferredSizeByte: uint64(len(body)),
			contentType:         contentType,
			responseHeaders:     responseHeaders,
		},
	}
}
