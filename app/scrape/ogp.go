package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// PageMetadata holds the Open Graph fields read from an entry's target page.
// Each field is independently optional and empty when the page does not
// declare it.
type PageMetadata struct {
	Title       string
	Description string
	ImageURL    string
}

type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewExtractor(httpClient *http.Client, userAgent string) *Extractor {
	return &Extractor{httpClient: httpClient, userAgent: userAgent}
}

// ExtractMetadata reads og:title, og:description and og:image from the page.
// Enrichment is best-effort: any fetch or parse failure yields nil so the
// entry can still be published without an embed.
func (e *Extractor) ExtractMetadata(ctx context.Context, pageURL string) *PageMetadata {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Debug("Metadata request failed", "url", pageURL, "error", err)
		return nil
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Debug("Metadata fetch failed", "url", pageURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Metadata fetch returned non-OK status", "url", pageURL, "status", resp.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		slog.Debug("Metadata parse failed", "url", pageURL, "error", err)
		return nil
	}

	return &PageMetadata{
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		ImageURL:    metaProperty(doc, "og:image"),
	}
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return content
}
