package jd

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// fetchTimeout bounds URL fetches of job postings.
const fetchTimeout = 30 * time.Second

// Fetch retrieves a job posting from a file path or URL.
func Fetch(ctx context.Context, input string) (content string, err error) {
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch job posting from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to read job posting from file: %s", input)
		return content, err
	}

	return content, err
}

// fetchFromFile reads a job posting from a file.
func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("file is empty")
		return content, err
	}

	return content, err
}

// fetchFromURL retrieves a job posting over HTTP and strips markup.
func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}
	req.Header.Set("User-Agent", "persona-matrix/1.0")

	client := &http.Client{Timeout: fetchTimeout}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	content = stripHTML(string(body))
	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

// stripHTML removes tags and decodes entities. Job postings are mostly
// flat text inside markup, so tag removal is enough; no DOM parse needed.
func stripHTML(markup string) (text string) {
	text = markup
	text = removeTagAndContent(text, "script")
	text = removeTagAndContent(text, "style")

	inTag := false
	var result strings.Builder
	for _, char := range text {
		switch {
		case char == '<':
			inTag = true
		case char == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(char)
		}
	}

	text = html.UnescapeString(result.String())
	text = strings.Join(strings.Fields(text), " ")

	return text
}

// removeTagAndContent drops a tag together with everything inside it.
func removeTagAndContent(markup, tag string) (result string) {
	result = markup
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		startIdx := strings.Index(result, openTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(result[startIdx:], closeTag)
		if endIdx == -1 {
			break
		}

		endIdx += startIdx + len(closeTag)
		result = result[:startIdx] + result[endIdx:]
	}

	return result
}
