package dispatch

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxMessageLength = 200

// errorMessage extracts a human readable message from a failed response body.
// The backend answers {"message": ...}; the hosting platform answers HTML while
// the service is waking up.
func errorMessage(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if strings.Contains(contentType, "json") || trimmed[0] == '{' {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}

	if strings.Contains(contentType, "html") || trimmed[0] == '<' {
		if msg := htmlMessage(trimmed); msg != "" {
			return msg
		}
	}

	return truncate(string(trimmed))
}

func htmlMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return truncate(title)
	}
	for _, sel := range []string{"h1", "body"} {
		if text := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); text != "" {
			return truncate(text)
		}
	}
	return ""
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxMessageLength]) + "..."
}
