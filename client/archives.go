package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/RezaEskandarii/lrrctl/types"
)

// AddArchiveToCategory adds an archive to a static category.
func (c *Console) AddArchiveToCategory(ctx context.Context, archiveID, categoryID string) bool {
	return c.api.Call(ctx, categoryEndpoint(categoryID, archiveID), http.MethodPut,
		fmt.Sprintf("Added %s to category %s!", archiveID, categoryID),
		"Error adding/removing archive to category", nil)
}

func (c *Console) RemoveArchiveFromCategory(ctx context.Context, archiveID, categoryID string) bool {
	return c.api.Call(ctx, categoryEndpoint(categoryID, archiveID), http.MethodDelete,
		fmt.Sprintf("Removed %s from category %s!", archiveID, categoryID),
		"Error adding/removing archive to category", nil)
}

func categoryEndpoint(categoryID, archiveID string) string {
	return "/api/categories/" + url.PathEscape(categoryID) + "/" + url.PathEscape(archiveID)
}

// ArchiveCategories lists the categories an archive belongs to.
func (c *Console) ArchiveCategories(ctx context.Context, archiveID string) ([]types.Category, bool) {
	var payload struct {
		Categories []types.Category `json:"categories"`
	}
	ok := c.api.Call(ctx, "/api/archives/"+url.PathEscape(archiveID)+"/categories", http.MethodGet,
		"", fmt.Sprintf("Error finding categories for %s!", archiveID),
		func(result types.RequestResult) error {
			return result.Decode(&payload)
		})
	return payload.Categories, ok
}

// ListCategories returns every category, pinned ones first, then the most
// recently used.
func (c *Console) ListCategories(ctx context.Context) ([]types.Category, bool) {
	var categories []types.Category
	ok := c.api.Call(ctx, "/api/categories", http.MethodGet,
		"", "Couldn't load categories",
		func(result types.RequestResult) error {
			return result.Decode(&categories)
		})
	if !ok {
		return nil, false
	}
	SortCategories(categories)
	return categories, true
}

// SortCategories orders categories pinned first, then by last use, newest first.
func SortCategories(categories []types.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Pinned != categories[j].Pinned {
			return categories[i].Pinned > categories[j].Pinned
		}
		return categories[i].LastUsed > categories[j].LastUsed
	})
}

// DeleteArchive deletes an archive. When the server removed the metadata but could
// not delete the file, a persistent warning asks for manual cleanup and the call
// still counts as completed.
func (c *Console) DeleteArchive(ctx context.Context, archiveID string) bool {
	const errorHeading = "Error while deleting archive"

	result, err := c.api.Fetch(ctx, Request{Endpoint: "/api/archives/" + url.PathEscape(archiveID), Method: http.MethodDelete})
	if err != nil {
		c.api.fail(ctx, errorHeading, err)
		return false
	}

	if result.HasSuccessField() && !result.Succeeded() {
		c.api.notify(ctx, types.ToastMessage{
			Heading: "Couldn't delete archive file. (Maybe it has already been deleted beforehand?)",
			Body:    "Archive metadata has been deleted properly. Please delete the file manually before returning to the Library.",
			Icon:    types.IconWarning,
		})
		return true
	}

	c.api.notify(ctx, types.SuccessToast("Archive successfully deleted."))
	return true
}

// SaveMetadata replaces the title and tags of an archive.
func (c *Console) SaveMetadata(ctx context.Context, archiveID, title, tags string) bool {
	form := url.Values{}
	form.Set("tags", tags)
	form.Set("title", title)

	return c.submit(ctx, FormRequest("/api/archives/"+url.PathEscape(archiveID)+"/metadata", http.MethodPut, form),
		"Metadata saved!", "Error while saving archive data :")
}

// TagSuggestions returns the labels of the tags weighing at least minWeight, heaviest
// first.
func (c *Console) TagSuggestions(ctx context.Context, minWeight int) ([]string, bool) {
	var stats []types.TagStat
	ok := c.api.Call(ctx, fmt.Sprintf("/api/database/stats?minweight=%d", minWeight), http.MethodGet,
		"", "Couldn't load tag statistics",
		func(result types.RequestResult) error {
			return result.Decode(&stats)
		})
	if !ok {
		return nil, false
	}
	return TagLabels(stats, minWeight), true
}

// TagLabels filters stats by weight and renders them as search labels.
func TagLabels(stats []types.TagStat, minWeight int) []string {
	kept := make([]types.TagStat, 0, len(stats))
	for _, s := range stats {
		if s.Weight >= types.Numeric(minWeight) {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Weight > kept[j].Weight })

	labels := make([]string, len(kept))
	for i, s := range kept {
		labels[i] = s.Label()
	}
	return labels
}
