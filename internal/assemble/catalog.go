package assemble

import (
	"tubio/internal/protocol"
	"tubio/internal/ytdlp"
)

// CatalogMetas maps a catalog extraction to listing items. A channel-tab
// record lists itself as a single square channel item; anything else
// lists its entries, falling back to the record alone when the extractor
// reported no entries.
func CatalogMetas(rec *ytdlp.Record, requestedID string) []protocol.Meta {
	channel := rec.IsChannelTab()

	items := rec.Entries
	if channel || len(items) == 0 {
		items = []ytdlp.Record{*rec}
	}

	metas := make([]protocol.Meta, 0, len(items))
	for i := range items {
		entry := &items[i]

		key := entry.ID
		if key == "" {
			key = entry.URL
		}
		if channel {
			key = entry.UploaderID
		}
		if key == "" {
			continue
		}

		id := requestedID
		switch {
		case rec.WebpageURLDomain == "youtube.com":
			id = protocol.IDPrefix + key
		case len(rec.Entries) > 0:
			id = protocol.IDPrefix + entry.URL
		}

		metaType := "movie"
		posterShape := "landscape"
		if channel {
			metaType = "channel"
			posterShape = "square"
		}
		name := entry.Title
		if name == "" {
			name = "Unknown Title"
		}
		description := entry.Description
		if description == "" {
			description = name
		}

		metas = append(metas, protocol.Meta{
			ID:          id,
			Type:        metaType,
			Name:        name,
			Poster:      entry.ThumbnailURL(),
			PosterShape: posterShape,
			Description: description,
			ReleaseInfo: entry.ReleaseInfo(),
		})
	}
	return metas
}
