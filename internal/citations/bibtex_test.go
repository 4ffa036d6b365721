package citations

import (
	"strings"
	"testing"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func TestBibTeXEntry(t *testing.T) {
	tests := []struct {
		name    string
		item    *models.Item
		citekey string
		want    []string
		absent  []string
	}{
		{
			name: "journal article",
			item: &models.Item{
				ItemType: "journalArticle",
				Title:    "Machine Learning in Climate Science",
				Creators: []models.Creator{author("John", "Smith"), author("Jane", "Doe")},
				Fields: map[string]string{
					"date":             "2020-05-15",
					"publicationTitle": "Nature Climate Change",
					"volume":           "10",
					"issue":            "5",
					"pages":            "123-130",
					"DOI":              "10.1038/s41558-020-0000-0",
				},
			},
			citekey: "smithDoe2020",
			want: []string{
				"@article{smithDoe2020,",
				"title = {Machine Learning in Climate Science}",
				"author = {Smith, John and Doe, Jane}",
				"journal = {Nature Climate Change}",
				"year = {2020}",
				"volume = {10}",
				"number = {5}",
				"pages = {123--130}",
				"doi = {10.1038/s41558-020-0000-0}",
			},
		},
		{
			name: "book section with editor",
			item: &models.Item{
				ItemType: "bookSection",
				Title:    "On Method",
				Creators: []models.Creator{
					author("Ada", "Lovelace"),
					{CreatorType: "editor", FirstName: "Charles", LastName: "Babbage"},
				},
				Fields: map[string]string{"bookTitle": "Collected Essays", "publisher": "Penguin", "place": "London", "pages": "12–40"},
			},
			citekey: "lovelace",
			want: []string{
				"@incollection{lovelace,",
				"author = {Lovelace, Ada}",
				"editor = {Babbage, Charles}",
				"booktitle = {Collected Essays}",
				"publisher = {Penguin}",
				"address = {London}",
				"pages = {12--40}",
			},
		},
		{
			name: "conference paper falls back to publication title",
			item: &models.Item{
				ItemType: "conferencePaper",
				Title:    "Neural Networks",
				Fields:   map[string]string{"publicationTitle": "Proceedings of CVPR"},
			},
			citekey: "x",
			want:    []string{"@inproceedings{x,", "booktitle = {Proceedings of CVPR}"},
			absent:  []string{"journal"},
		},
		{
			name: "thesis",
			item: &models.Item{
				ItemType: "thesis",
				Title:    "A Thesis",
				Fields:   map[string]string{"university": "MIT", "publisher": "MIT"},
			},
			citekey: "t",
			want:    []string{"@phdthesis{t,", "school = {MIT}"},
			absent:  []string{"publisher"},
		},
		{
			name: "unknown type is misc with escaped text",
			item: &models.Item{
				ItemType: "podcast",
				Title:    "R&D at 100% _speed_",
				Creators: []models.Creator{{CreatorType: "author", Name: "ACME & Sons"}},
				Tags:     []string{"audio"},
			},
			citekey: "acme",
			want: []string{
				"@misc{acme,",
				`title = {R\&D at 100\% \_speed\_}`,
				`author = {{ACME \& Sons}}`,
				"keywords = {audio}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BibTeXEntry(tt.item, tt.citekey)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("entry missing %q\ngot:\n%s", w, got)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("entry should not contain %q\ngot:\n%s", a, got)
				}
			}
			if !strings.HasSuffix(got, "\n}\n") {
				t.Errorf("entry not closed properly:\n%s", got)
			}
			if strings.Contains(got, ",\n}") {
				t.Errorf("entry has trailing comma:\n%s", got)
			}
		})
	}
}

func TestBibTeX(t *testing.T) {
	items := []models.Item{
		*itemWith("2020", author("John", "Smith")),
		*itemWith("2020", author("Jane", "Smith")),
		*itemWith("2021", author("John", "Smith")),
	}
	got := BibTeX(items)

	if !strings.HasPrefix(got, "% Exported from Zotero") {
		t.Errorf("missing header:\n%s", got)
	}
	keys := []string{"{smith2020,", "{smith2020a,", "{smith2021,"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(got, k)
		if idx < 0 {
			t.Errorf("missing citekey %q\ngot:\n%s", k, got)
			continue
		}
		if idx < last {
			t.Errorf("citekey %q out of order", k)
		}
		last = idx
	}
	if n := strings.Count(got, "@article{"); n != 3 {
		t.Errorf("got %d entries, want 3", n)
	}
}

func TestBibTeXPages(t *testing.T) {
	tests := map[string]string{
		"123-130":   "123--130",
		"123--130":  "123--130",
		"123 – 130": "123--130",
		"42":        "42",
		"":          "",
	}
	for in, want := range tests {
		if got := bibTeXPages(in); got != want {
			t.Errorf("bibTeXPages(%q) = %q, want %q", in, got, want)
		}
	}
}
