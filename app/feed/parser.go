package feed

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser turns a raw feed document into normalized item drafts.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run consumes the document stream in a single forward pass and returns
// the drafts in the order the document yields them. Entries without a
// guid are skipped and counted; no synthetic key is invented for them.
// A malformed document is a ParseError for the whole run.
func (p *Parser) Run(r io.Reader) ([]Draft, int, error) {
	parsed, err := p.gofeedParser.Parse(r)
	if err != nil {
		return nil, 0, &ParseError{Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	drafts := make([]Draft, 0, len(parsed.Items))
	skipped := 0

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		if strings.TrimSpace(item.GUID) == "" {
			skipped++
			continue
		}
		drafts = append(drafts, p.normalize(item))
	}

	return drafts, skipped, nil
}

func (p *Parser) normalize(item *gofeed.Item) Draft {
	draft := Draft{
		GUID:  item.GUID,
		Title: item.Title,
		Link:  item.Link,
	}

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		draft.PublishedAt = &published
	}

	metadata := map[string]interface{}{}

	if item.Description != "" {
		metadata["description"] = item.Description
	}
	if item.Content != "" {
		metadata["content"] = item.Content
	}
	if authors := p.extractAuthors(item); len(authors) > 0 {
		metadata["authors"] = authors
	}
	if len(item.Categories) > 0 {
		metadata["categories"] = item.Categories
	}

	// RSS 2.0 allows a single enclosure per item
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosure := item.Enclosures[0]
		encMeta := map[string]interface{}{
			"url":  enclosure.URL,
			"type": enclosure.Type,
		}
		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				encMeta["length"] = length
			}
		}
		metadata["enclosure"] = encMeta
	}

	if len(metadata) > 0 {
		draft.Metadata = metadata
	}

	return draft
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				if formatted := formatAuthor(author.Name, author.Email); formatted != "" {
					authors = append(authors, formatted)
				}
			}
		}
	} else if item.Author != nil {
		if formatted := formatAuthor(item.Author.Name, item.Author.Email); formatted != "" {
			authors = append(authors, formatted)
		}
	}

	return authors
}

func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case name != "":
		return name
	default:
		return email
	}
}
