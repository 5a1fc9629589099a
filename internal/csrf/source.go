package csrf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var ErrNoToken = errors.New("csrf token not found")

// TokenSource yields the token a client sends in HeaderName.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// CookieSource reads the token cookie the server set for URL.
type CookieSource struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

func (s CookieSource) Token(context.Context) (string, error) {
	name := s.Name
	if name == "" {
		name = DefaultCookieName
	}
	for _, c := range s.Jar.Cookies(s.URL) {
		if c.Name == name && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoToken
}

// StaticSource is a token known up front, e.g. rendered into the page.
type StaticSource string

func (s StaticSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// FirstOf tries each source in order and returns the first token found.
func FirstOf(sources ...TokenSource) TokenSource {
	return firstOf(sources)
}

type firstOf []TokenSource

func (f firstOf) Token(ctx context.Context) (string, error) {
	for _, s := range f {
		token, err := s.Token(ctx)
		if err == nil && token != "" {
			return token, nil
		}
		if err != nil && !errors.Is(err, ErrNoToken) {
			return "", err
		}
	}
	return "", ErrNoToken
}

// TokenFromHTML finds the token in page markup: a <meta name="csrf-token">
// tag, or else the first element carrying a data-csrf-token attribute.
func TokenFromHTML(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var meta, data string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if meta != "" {
			return
		}
		if n.Type == html.ElementNode {
			if n.Data == "meta" && attr(n, "name") == "csrf-token" {
				meta = attr(n, "content")
			}
			if data == "" {
				data = attr(n, "data-csrf-token")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	switch {
	case meta != "":
		return meta, nil
	case data != "":
		return data, nil
	default:
		return "", ErrNoToken
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// MetaSource reads the token from rendered page markup.
type MetaSource struct {
	Page string
}

func (s MetaSource) Token(context.Context) (string, error) {
	return TokenFromHTML(s.Page)
}
