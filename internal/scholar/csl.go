// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"io"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names follow the CSL-YAML schema so that output is
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID     string   `yaml:"id"`
	Type   string   `yaml:"type"`
	Title  string   `yaml:"title"`
	URL    string   `yaml:"URL,omitempty"`
	DOI    string   `yaml:"DOI,omitempty"`
	Issued *CSLDate `yaml:"issued,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the articles as a CSL-YAML list to w.
func FormatCSL(articles []*types.Article, w io.Writer) error {
	items := make([]CSLItem, len(articles))
	for i, a := range articles {
		items[i] = toCSLItem(a)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts an Article to a CSLItem. The cluster identifier makes
// the most stable ID when the engine reported one.
func toCSLItem(a *types.Article) CSLItem {
	item := CSLItem{
		Type:  "article",
		Title: a.Title(),
		URL:   a.GetString(types.AttrURL),
		DOI:   a.GetString("doi"),
	}

	item.ID = a.GetString(types.AttrClusterID)
	if item.ID == "" {
		item.ID = item.Title
	}

	if year, err := strconv.Atoi(a.GetString(types.AttrYear)); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}

	return item
}
