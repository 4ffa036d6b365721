package citations

import (
	"testing"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func author(first, last string) models.Creator {
	return models.Creator{CreatorType: "author", FirstName: first, LastName: last}
}

func itemWith(date string, creators ...models.Creator) *models.Item {
	return &models.Item{
		ItemType: "journalArticle",
		Creators: creators,
		Fields:   map[string]string{"date": date},
	}
}

func TestCitekey(t *testing.T) {
	tests := []struct {
		name string
		item *models.Item
		want string
	}{
		{"single author", itemWith("2020", author("John", "Smith")), "smith2020"},
		{"full date", itemWith("2020-05-15", author("John", "Smith")), "smith2020"},
		{"textual date", itemWith("May 1998", author("Ada", "Lovelace")), "lovelace1998"},
		{"no year", itemWith("", author("John", "Smith")), "smith"},
		{"two authors", itemWith("2021", author("John", "Smith"), author("Jane", "Jones")), "smithJones2021"},
		{"three authors", itemWith("2019", author("A", "Cormen"), author("B", "Leiserson"), author("C", "Rivest")), "cormenEtAl2019"},
		{"particle", itemWith("1945", author("John", "von Neumann")), "vonNeumann1945"},
		{"single field name", itemWith("2010", models.Creator{CreatorType: "author", Name: "World Health Organization"}), "organization2010"},
		{"editors only", itemWith("2000", models.Creator{CreatorType: "editor", FirstName: "E", LastName: "Editor"}), "editor2000"},
		{"editors skipped when authors exist", itemWith("2000", models.Creator{CreatorType: "editor", LastName: "Editor"}, author("A", "Writer")), "writer2000"},
		{"accents kept", itemWith("2005", author("José", "Núñez")), "núñez2005"},
		{"punctuation dropped", itemWith("2005", author("Sean", "O'Brien")), "obrien2005"},
		{"nothing at all", itemWith(""), "unknown"},
		{"year only", itemWith("2020"), "ref2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Citekey(tt.item, map[string]bool{})
			if got != tt.want {
				t.Errorf("Citekey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCitekeyCollisions(t *testing.T) {
	taken := map[string]bool{}
	item := itemWith("2020", author("John", "Smith"))

	want := []string{"smith2020", "smith2020a", "smith2020b"}
	for i, w := range want {
		if got := Citekey(item, taken); got != w {
			t.Errorf("call %d: Citekey() = %q, want %q", i, got, w)
		}
	}
	if len(taken) != 3 {
		t.Errorf("taken has %d keys, want 3", len(taken))
	}
}

func TestSuffix(t *testing.T) {
	tests := map[int]string{0: "a", 25: "z", 26: "z1", 30: "z5"}
	for i, want := range tests {
		if got := suffix(i); got != want {
			t.Errorf("suffix(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestYear(t *testing.T) {
	tests := map[string]string{
		"2020":          "2020",
		"2020-01-15":    "2020",
		"ca. 1850":      "1850",
		"Spring 1999":   "1999",
		"no date":       "",
		"issue 12345":   "",
		"":              "",
		"1066":          "",
		"15 March 1604": "1604",
	}
	for in, want := range tests {
		if got := Year(in); got != want {
			t.Errorf("Year(%q) = %q, want %q", in, got, want)
		}
	}
}
