package countytax

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http/cookiejar"
	"sort"
	"strings"
	"time"
	"taxrecords-backend/lib/restyutil"
	"taxrecords-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Fetcher is the thin, replaceable collaborator that turns a search
// into a parsed document. Its concurrency and session policy are its
// own business; the engine only sees documents or FetchErrors.
type Fetcher interface {
	Fetch(ctx context.Context, search SearchDescriptor, fields map[string]string) (*goquery.Document, error)
}

type RestyFetcherOptions struct {
	Timeout time.Duration
	// when set, every fetched document is dumped here for offline
	// debugging
	Artifacts *restyutil.FilesystemOutput
}

type RestyFetcher struct {
	http      *resty.Client
	artifacts *restyutil.FilesystemOutput
}

func NewRestyFetcher(opts RestyFetcherOptions) (*RestyFetcher, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/countytax/http")

	return &RestyFetcher{
		http:      client,
		artifacts: opts.Artifacts,
	}, nil
}

func (f *RestyFetcher) Fetch(ctx context.Context, search SearchDescriptor, fields map[string]string) (*goquery.Document, error) {
	req := f.http.R().SetContext(ctx)

	var res *resty.Response
	var err error
	switch search.Method {
	case "POST":
		form := make(map[string]string, len(fields)+1)
		for k, v := range fields {
			form[k] = v
		}
		if search.SubmitButton != "" {
			value := search.SubmitValue
			if value == "" {
				value = "Submit"
			}
			form[search.SubmitButton] = value
		}
		res, err = req.SetFormData(form).Post(search.URL)
	default:
		res, err = req.SetQueryParams(fields).Get(search.URL)
	}
	if err != nil {
		return nil, &FetchError{URL: search.URL, Err: err}
	}
	if res.IsError() {
		return nil, &FetchError{
			URL: search.URL,
			Err: fmt.Errorf("status %s", res.Status()),
		}
	}

	if f.artifacts != nil {
		f.artifacts.Write(artifactID(search, fields), res.Body())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, &FetchError{URL: search.URL, Err: err}
	}
	return doc, nil
}

// artifactID produces a stable filename for a fetch so re-runs
// overwrite instead of accumulating.
func artifactID(search SearchDescriptor, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(search.URL)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, fields[k])
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:]) + ".html"
}
