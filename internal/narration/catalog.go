package narration

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"vidgen/internal/language"
	"vidgen/internal/services"
)

// Voice is one entry of the synthesis voice catalog.
type Voice struct {
	Name         string `json:"Name,omitempty"`
	ShortName    string `json:"ShortName"`
	Gender       string `json:"Gender"`
	Locale       string `json:"Locale"`
	FriendlyName string `json:"FriendlyName,omitempty"`
}

// ID returns the identifier passed to the synthesizer.
func (v Voice) ID() string {
	if v.ShortName != "" {
		return v.ShortName
	}
	return v.Name
}

// Catalog lists available voices.
type Catalog interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// HTTPCatalog fetches the voice list as JSON from a URL.
type HTTPCatalog struct {
	URL    string
	Client *http.Client
}

// NewHTTPCatalog builds a catalog client with the given request timeout.
func NewHTTPCatalog(url string, timeout time.Duration) *HTTPCatalog {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPCatalog{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (c *HTTPCatalog) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narrate", "voice catalog", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "narrate", "voice catalog", "catalog unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "narrate", "voice catalog",
			fmt.Sprintf("catalog returned %d", resp.StatusCode), nil)
	}
	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, services.Wrap(services.ErrTransient, "narrate", "voice catalog", "decode catalog", err)
	}
	return voices, nil
}

// FileCatalog reads a JSON voice list written by `vidgen voices export`.
type FileCatalog struct {
	Path string
}

func (c FileCatalog) Voices(context.Context) ([]Voice, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narrate", "voice catalog", c.Path, err)
	}
	var voices []Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narrate", "voice catalog", "decode "+c.Path, err)
	}
	return voices, nil
}

// NewCatalog prefers a local catalog file when one is configured.
func NewCatalog(url, path string, timeout time.Duration) Catalog {
	if strings.TrimSpace(path) != "" {
		return FileCatalog{Path: path}
	}
	return NewHTTPCatalog(url, timeout)
}

// ParseVoiceList reads the plain-text listing printed by
// `edge-tts --list-voices`: blocks of "Key: value" lines separated by blank
// lines.
func ParseVoiceList(r io.Reader) ([]Voice, error) {
	var (
		voices  []Voice
		current Voice
	)
	flush := func() {
		if current.ID() == "" {
			current = Voice{}
			return
		}
		if current.ShortName == "" {
			current.ShortName = current.Name
		}
		if current.Locale == "" {
			current.Locale = localeFromShortName(current.ShortName)
		}
		voices = append(voices, current)
		current = Voice{}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			current.Name = value
		case "shortname":
			current.ShortName = value
		case "gender":
			current.Gender = value
		case "locale":
			current.Locale = value
		case "friendlyname":
			current.FriendlyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return voices, nil
}

// FilterLanguages keeps voices whose locale belongs to one of the given
// language prefixes.
func FilterLanguages(voices []Voice, prefixes []string) []Voice {
	return lo.Filter(voices, func(v Voice, _ int) bool {
		return language.HasPrefix(v.Locale, prefixes)
	})
}

func localeFromShortName(name string) string {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}
