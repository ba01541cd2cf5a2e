package etl

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OEWSDownloadPage is the BLS page listing OEWS data archives by year.
const OEWSDownloadPage = "https://www.bls.gov/oes/tables.htm"

// oewsArchivePattern matches the national "all data" archive links, e.g.
// "oesm23all.zip". The year digits sort the archives newest-first.
var oewsArchivePattern = regexp.MustCompile(`(?i)oesm(\d{2})all\.zip$`)

// DiscoverOEWSArchive parses the BLS download page and returns the absolute
// URL of the most recent national OEWS data archive.
func DiscoverOEWSArchive(pageHTML, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse download page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	bestYear := -1
	bestLink := ""
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := oewsArchivePattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		year := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
		if year > bestYear {
			bestYear = year
			bestLink = href
		}
	})

	if bestLink == "" {
		return "", fmt.Errorf("no OEWS archive link found on %s", pageURL)
	}

	ref, err := url.Parse(bestLink)
	if err != nil {
		return "", fmt.Errorf("invalid archive link %s: %w", bestLink, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// LatestOEWSArchiveURL fetches the BLS download page and discovers the
// newest archive link.
func (d *Downloader) LatestOEWSArchiveURL(ctx context.Context) (string, error) {
	page, err := d.Fetch(ctx, OEWSDownloadPage)
	if err != nil {
		return "", fmt.Errorf("failed to fetch OEWS download page: %w", err)
	}
	return DiscoverOEWSArchive(string(page), OEWSDownloadPage)
}
