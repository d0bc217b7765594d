package fetch

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sitecrawl/fetch")

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type HttpOptions struct {
	// BaseUrl is used to resolve relative addresses.
	BaseUrl   string
	UserAgent string
	// Timeout bounds a single request, zero means no timeout.
	Timeout          time.Duration
	CloudflareBypass bool
	// Output receives a dump of every http message when debug logging is
	// enabled, it may be nil.
	Output restyutil.InstrumentOutput
}

// HttpFetcher fetches pages with plain GET requests.
type HttpFetcher struct {
	http *resty.Client
}

func NewHttpFetcher(opts HttpOptions) (HttpFetcher, error) {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return HttpFetcher{}, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("User-Agent", userAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	restyutil.InstrumentClient(client, tracer, opts.Output)

	return HttpFetcher{http: client}, nil
}

func (f HttpFetcher) Fetch(ctx context.Context, address string) (crawl.Page, error) {
	ctx, span := tracer.Start(ctx, "HttpFetcher.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("address", address))

	res, err := f.http.R().
		SetContext(ctx).
		Get(address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return crawl.Page{}, crawl.NewFetchError(address, 0, err)
	}
	if res.StatusCode() != http.StatusOK {
		err := crawl.NewFetchError(address, res.StatusCode(), nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, res.Status())
		return crawl.Page{}, err
	}

	final := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		final = res.RawResponse.Request.URL.String()
	}
	return crawl.Page{
		Address: final,
		Status:  res.StatusCode(),
		Body:    res.Body(),
	}, nil
}
