package granola

import (
	"context"
	"log"

	"github.com/TobiSchelling/weeklynotes/internal/notes"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

// RecentNotes returns the documents of the named folder created inside w,
// with transcripts attached when requested. A missing folder is an error;
// an empty folder is not.
func (c *Client) RecentNotes(ctx context.Context, folderName string, w week.Window, includeTranscripts bool) ([]notes.Document, error) {
	folder, err := c.FindFolder(ctx, folderName)
	if err != nil {
		return nil, err
	}

	ids := folder.IDs()
	log.Printf("Folder %q holds %d documents", folder.DisplayName(), len(ids))
	if len(ids) == 0 {
		return nil, nil
	}

	docs, err := c.DocumentsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	filtered := FilterByWindow(docs, w)
	log.Printf("%d of %d documents fall in %s", len(filtered), len(docs), w.Display())

	if includeTranscripts {
		for i := range filtered {
			if filtered[i].ID == "" {
				continue
			}
			filtered[i].Transcript = c.Transcript(ctx, filtered[i].ID)
		}
	}
	return filtered, nil
}

// FilterByWindow keeps documents whose creation time parses and falls in
// [w.Start, w.End). Order is preserved.
func FilterByWindow(docs []notes.Document, w week.Window) []notes.Document {
	var kept []notes.Document
	for _, d := range docs {
		created, ok := d.Created()
		if !ok {
			continue
		}
		if w.Contains(created) {
			kept = append(kept, d)
		}
	}
	return kept
}
