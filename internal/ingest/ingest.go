package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
)

// minChunkChars drops boilerplate fragments (nav labels, cookie banners)
// from the knowledge corpus.
const minChunkChars = 40

// Fetcher snapshots rendered catalog pages to local HTML files. Pages are
// rendered headless because the source site builds part listings client-side.
type Fetcher struct {
	Timeout time.Duration
	Logger  *log.Logger
}

// FetchPages renders each source page and writes outDir/<name>.html.
// Per-page failures are logged and skipped; the error is non-nil only when
// every page failed.
func (f Fetcher) FetchPages(ctx context.Context, pages map[string]string, outDir string) (map[string]string, error) {
	logger := f.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	if len(pages) == 0 {
		return nil, errors.New("no source pages configured")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	saved := make(map[string]string, len(pages))
	for name, pageURL := range pages {
		html, err := f.fetchHTML(ctx, pageURL)
		if err != nil {
			logger.Printf("fetch %s (%s) failed: %v", name, pageURL, err)
			continue
		}
		path := filepath.Join(outDir, name+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			logger.Printf("write %s failed: %v", path, err)
			continue
		}
		logger.Printf("saved %s (%d bytes)", path, len(html))
		saved[name] = path
	}
	if len(saved) == 0 {
		return nil, errors.New("all source pages failed to fetch")
	}
	return saved, nil
}

func (f Fetcher) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", errors.New("invalid url")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("PartsAssistBot/1.0 (+contact@example.com)"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// BuildKnowledge extracts the main text of every HTML snapshot matching the
// glob and writes the blank-line-separated corpus the retriever loads.
func BuildKnowledge(htmlGlob, outPath string, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}

	files, err := filepath.Glob(htmlGlob)
	if err != nil {
		return 0, fmt.Errorf("bad glob %q: %w", htmlGlob, err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no HTML files match %q", htmlGlob)
	}

	var chunks []string
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			logger.Printf("open %s failed: %v", file, err)
			continue
		}
		article, err := readability.FromReader(f, &url.URL{})
		f.Close()
		if err != nil {
			logger.Printf("extract %s failed: %v", file, err)
			continue
		}
		extracted := chunkText(article.TextContent)
		logger.Printf("extracted %d chunks from %s", len(extracted), file)
		chunks = append(chunks, extracted...)
	}
	if len(chunks) == 0 {
		return 0, errors.New("no usable text extracted from HTML sources")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, []byte(strings.Join(chunks, "\n\n")+"\n"), 0o644); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// chunkText splits extracted article text into paragraph chunks, dropping
// fragments too short to carry retrievable content.
func chunkText(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < minChunkChars {
			continue
		}
		out = append(out, line)
	}
	return out
}
