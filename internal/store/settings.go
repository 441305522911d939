package store

import (
	"context"
	"strconv"
	"strings"
)

const (
	KeyIndexViewMode    = "indexViewMode"
	KeyCropThumbs       = "cropthumbs"
	KeyCustomColumn1    = "customColumn1"
	KeyCustomColumn2    = "customColumn2"
	KeySawWelcomeNotice = "sawContextMenuToast"

	readerSuffix     = "-reader"
	totalPagesSuffix = "-totalPages"
)

// Settings are the console preferences kept in the local store.
type Settings struct {
	IndexViewMode int // 0 compact, 1 thumbnails
	CropThumbs    bool
	CustomColumn1 string
	CustomColumn2 string
}

func DefaultSettings() Settings {
	return Settings{
		IndexViewMode: 1,
		CropThumbs:    true,
		CustomColumn1: "artist",
		CustomColumn2: "series",
	}
}

// LoadSettings reads the preferences, falling back to the defaults for every key that
// is missing or unreadable.
func LoadSettings(ctx context.Context, s LocalStore) (Settings, error) {
	settings := DefaultSettings()

	if v, ok, err := s.Get(ctx, KeyIndexViewMode); err != nil {
		return settings, err
	} else if ok {
		if mode, err := strconv.Atoi(v); err == nil {
			settings.IndexViewMode = mode
		}
	}
	if v, ok, err := s.Get(ctx, KeyCropThumbs); err != nil {
		return settings, err
	} else if ok {
		settings.CropThumbs = strings.EqualFold(v, "true")
	}
	if v, ok, err := s.Get(ctx, KeyCustomColumn1); err != nil {
		return settings, err
	} else if ok && v != "" {
		settings.CustomColumn1 = v
	}
	if v, ok, err := s.Get(ctx, KeyCustomColumn2); err != nil {
		return settings, err
	} else if ok && v != "" {
		settings.CustomColumn2 = v
	}
	return settings, nil
}

func SaveSettings(ctx context.Context, s LocalStore, settings Settings) error {
	values := map[string]string{
		KeyIndexViewMode: strconv.Itoa(settings.IndexViewMode),
		KeyCropThumbs:    strconv.FormatBool(settings.CropThumbs),
		KeyCustomColumn1: settings.CustomColumn1,
		KeyCustomColumn2: settings.CustomColumn2,
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// LocalProgress is a reading position saved locally by an older client.
type LocalProgress struct {
	ArchiveID string
	Page      int
}

// ListLocalProgress returns every archive with a locally saved reading position.
// Entries whose value is not a page number are returned with Page 0.
func ListLocalProgress(ctx context.Context, s LocalStore) ([]LocalProgress, error) {
	keys, err := KeysWithSuffix(ctx, s, readerSuffix)
	if err != nil {
		return nil, err
	}

	out := make([]LocalProgress, 0, len(keys))
	for _, key := range keys {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		page, _ := strconv.Atoi(strings.TrimSpace(v))
		out = append(out, LocalProgress{ArchiveID: strings.TrimSuffix(key, readerSuffix), Page: page})
	}
	return out, nil
}

func SetLocalProgress(ctx context.Context, s LocalStore, archiveID string, page int) error {
	return s.Set(ctx, archiveID+readerSuffix, strconv.Itoa(page))
}

// ClearLocalProgress drops the reading position and page count of an archive.
func ClearLocalProgress(ctx context.Context, s LocalStore, archiveID string) error {
	return s.Delete(ctx, archiveID+readerSuffix, archiveID+totalPagesSuffix)
}
