package captioning

import (
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(models.Record{
		Title:       "The Harvesters",
		Artist:      "Pieter Bruegel the Elder",
		Medium:      "Oil on wood",
		PictureData: "Peasants rest under a pear tree",
	})

	for _, want := range []string{
		"Title: The Harvesters",
		"Artist: Pieter Bruegel the Elder",
		"Period: Unknown period",
		"Medium: Oil on wood",
		"Year: Unknown year",
		"Nationality: Unknown nationality",
		"Details: Peasants rest under a pear tree",
		"150-200 word",
		"- Symbolism and meaning",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
