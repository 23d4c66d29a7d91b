package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>http://feed.example/</link>
    <item>
      <guid>guid-1</guid>
      <title>First post</title>
      <link>http://feed.example/1</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <description>hello</description>
      <category>go</category>
      <category>feeds</category>
    </item>
    <item>
      <guid>guid-2</guid>
      <title>Second post</title>
      <link>http://feed.example/2</link>
      <author>jane@example.com (Jane)</author>
      <enclosure url="http://feed.example/2.mp3" length="1024" type="audio/mpeg"/>
    </item>
    <item>
      <title>No guid here</title>
      <link>http://feed.example/3</link>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <id>urn:uuid:entry-1</id>
    <title>Atom entry</title>
    <link href="http://atom.example/1"/>
    <updated>2006-01-02T15:04:05Z</updated>
  </entry>
</feed>`

func TestParserRSS(t *testing.T) {
	parser := NewParser()

	drafts, skipped, err := parser.Run(strings.NewReader(sampleRSS))
	require.NoError(t, err)

	// the item without a guid is skipped, never synthesized
	assert.Equal(t, 1, skipped)
	require.Len(t, drafts, 2)

	first := drafts[0]
	assert.Equal(t, "guid-1", first.GUID)
	assert.Equal(t, "First post", first.Title)
	assert.Equal(t, "http://feed.example/1", first.Link)
	require.NotNil(t, first.PublishedAt)
	expected := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.True(t, first.PublishedAt.Equal(expected))
	assert.Equal(t, "hello", first.Metadata["description"])
	assert.Equal(t, []string{"go", "feeds"}, first.Metadata["categories"])

	second := drafts[1]
	assert.Equal(t, "guid-2", second.GUID)
	assert.Nil(t, second.PublishedAt)

	enclosure, ok := second.Metadata["enclosure"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http://feed.example/2.mp3", enclosure["url"])
	assert.Equal(t, int64(1024), enclosure["length"])
}

func TestParserAtom(t *testing.T) {
	parser := NewParser()

	drafts, skipped, err := parser.Run(strings.NewReader(sampleAtom))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, drafts, 1)
	assert.Equal(t, "urn:uuid:entry-1", drafts[0].GUID)
	assert.Equal(t, "Atom entry", drafts[0].Title)
}

func TestParserMalformedDocument(t *testing.T) {
	parser := NewParser()

	_, _, err := parser.Run(strings.NewReader("this is not a feed"))
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParserPreservesDocumentOrder(t *testing.T) {
	parser := NewParser()

	drafts, _, err := parser.Run(strings.NewReader(sampleRSS))
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "guid-1", drafts[0].GUID)
	assert.Equal(t, "guid-2", drafts[1].GUID)
}
