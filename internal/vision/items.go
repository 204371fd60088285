package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies an identified shelf item.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	KindDisc  Kind = "disc"
	KindVinyl Kind = "vinyl"
	KindGame  Kind = "game"
	KindOther Kind = "other"
)

// Item is one identified shelf entry after coercion.
type Item struct {
	Title   string
	Creator string
	Kind    Kind
	Year    int
}

type rawItem struct {
	Title   string          `json:"title"`
	Creator string          `json:"creator"`
	Author  string          `json:"author"`
	Type    string          `json:"type"`
	Year    json.RawMessage `json:"year"`
}

type rawItemList struct {
	Items []rawItem `json:"items"`
}

// ParseItems decodes a model response into the item schema, applying the
// coercion pass: kind values are lowercased, the unsupported "book" kind
// maps to "other", the wire "dvd" kind maps to "disc", an "author" field
// stands in for a missing "creator", and stringified years are parsed or
// dropped. An empty item list is valid; an item without a title or with an
// unrecognized kind is a schema error.
func ParseItems(content string) ([]Item, error) {
	var payload rawItemList
	if err := DecodeModelJSON(content, &payload); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(payload.Items))
	for index, raw := range payload.Items {
		item, err := coerceItem(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func coerceItem(raw rawItem) (Item, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Item{}, fmt.Errorf("missing title")
	}
	creator := strings.TrimSpace(raw.Creator)
	if creator == "" {
		creator = strings.TrimSpace(raw.Author)
	}
	kind, err := coerceKind(raw.Type)
	if err != nil {
		return Item{}, err
	}
	return Item{
		Title:   title,
		Creator: creator,
		Kind:    kind,
		Year:    coerceYear(raw.Year),
	}, nil
}

func coerceKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie":
		return KindMovie, nil
	case "tv", "series":
		return KindTV, nil
	case "dvd", "disc", "blu-ray", "bluray":
		return KindDisc, nil
	case "vinyl", "record":
		return KindVinyl, nil
	case "game":
		return KindGame, nil
	case "other", "book":
		return KindOther, nil
	default:
		return "", fmt.Errorf("unrecognized kind %q", value)
	}
}

func coerceYear(raw json.RawMessage) int {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0
	}
	trimmed = strings.Trim(trimmed, `"`)
	year, err := strconv.Atoi(strings.TrimSpace(trimmed))
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
