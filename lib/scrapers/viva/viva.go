// Package viva is the client for the VIVA sales portal: it bridges the
// cookies captured by the interactive browser login into a plain HTTP
// client and decodes the inline data embedded in the listing and detail
// pages.
package viva

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"vivapickup/lib/htmlutil"
	"vivapickup/lib/inlinedata"
	"vivapickup/lib/restyutil"
	"vivapickup/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/viva")

const listingVar = "datalist"
const detailVar = "data"

type Client struct {
	http          *resty.Client
	listingUrl    string
	detailBaseUrl string
}

type ClientOptions struct {
	// full url of the order listing page
	ListingUrl string
	// detail page url prefix, the order's OriginalID is appended verbatim
	DetailBaseUrl string
	// session cookies harvested from the interactive login
	Cookies []*http.Cookie
	// optional, dumps every exchange for debugging
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.ListingUrl == "" {
		return nil, fmt.Errorf("listing url is empty")
	}
	if opts.DetailBaseUrl == "" {
		return nil, fmt.Errorf("detail base url is empty")
	}
	listingUrl, err := url.Parse(opts.ListingUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetCookies(opts.Cookies)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(listingUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/viva/http")
	restyutil.InstrumentClient(client, opts.InstrumentOutput)

	return &Client{
		http:          client,
		listingUrl:    opts.ListingUrl,
		detailBaseUrl: opts.DetailBaseUrl,
	}, nil
}

// FetchListing fetches the order listing page and decodes its inline
// `var datalist = [...];` data. Records without an OriginalID are dropped
// with a warning, they cannot be joined to a detail page.
func (c *Client) FetchListing(ctx context.Context) ([]ListingEntry, error) {
	ctx, span := tracer.Start(ctx, "client:FetchListing")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.listingUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return nil, err
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected listing status")
		return nil, fmt.Errorf("listing page returned status %d", res.StatusCode())
	}

	var records []listingRecord
	err = decodeInline(res.Body(), listingVar, &records)
	if errors.Is(err, inlinedata.ErrNotFound) {
		slog.DebugContext(ctx, "listing page without datalist", "snippet", pageSnippet(res.String()))
		return nil, fmt.Errorf("listing page: %w", err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode listing data")
		return nil, err
	}

	entries := make([]ListingEntry, 0, len(records))
	for i, record := range records {
		entry, ok := record.toEntry()
		if !ok {
			slog.WarnContext(ctx, "listing record without OriginalID", "index", i)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FetchOrderDetail fetches and decodes the detail page for one order.
func (c *Client) FetchOrderDetail(ctx context.Context, originalID string) (OrderDetail, error) {
	ctx, span := tracer.Start(ctx, "client:FetchOrderDetail")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.detailBaseUrl + originalID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return OrderDetail{}, err
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected detail status")
		return OrderDetail{}, fmt.Errorf("detail page returned status %d", res.StatusCode())
	}

	var record detailRecord
	err = decodeInline(res.Body(), detailVar, &record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode detail data")
		return OrderDetail{}, err
	}
	return record.toDetail(), nil
}

// DefaultOrderNumber returns the newest order's number from the listing.
// Used as a login smoke check and as the default target in number mode.
func (c *Client) DefaultOrderNumber(ctx context.Context) (string, error) {
	entries, err := c.FetchListing(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("listing is empty")
	}
	return entries[0].Number, nil
}

// decodeInline walks the page's script elements first and falls back to
// the raw page text, pages occasionally inline the assignment outside a
// well-formed script tag.
func decodeInline(body []byte, name string, v any) error {
	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if docErr == nil {
		for _, script := range htmlutil.ScriptTexts(doc) {
			err := inlinedata.Decode(script, name, v)
			if errors.Is(err, inlinedata.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return inlinedata.Decode(string(body), name, v)
}

// pageSnippet mirrors the window of the page the operators used to
// inspect when the listing pattern broke (lines 100-150).
func pageSnippet(body string) string {
	lines := strings.Split(body, "\n")
	if len(lines) > 150 {
		lines = lines[:150]
	}
	if len(lines) > 99 {
		lines = lines[99:]
	}
	return strings.Join(lines, "\n")
}
