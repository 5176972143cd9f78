package captioning

import (
	"fmt"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

// BuildPrompt embeds the record's metadata into the caption generation prompt
func BuildPrompt(record models.Record) string {
	record = record.WithDefaults()

	return fmt.Sprintf(`Describe this artwork in detail:

Title: %s
Artist: %s
Period: %s
Medium: %s
Year: %s
Nationality: %s
Details: %s

Write a detailed 150-200 word description focusing on:
- Visual composition and layout
- Colors, lighting, and atmosphere
- Subjects, figures, and objects depicted
- Artistic style and technique
- Symbolism and meaning
- Textures and material qualities

Description:`,
		record.Title,
		record.Artist,
		record.Period,
		record.Medium,
		record.Year,
		record.Nationality,
		record.PictureData,
	)
}

// fillerSentence pads short generated captions with period and medium context
func fillerSentence(record models.Record) string {
	year := record.Year
	if year == models.UnknownYear {
		year = "historical"
	}
	return fmt.Sprintf("The artwork demonstrates %s style characteristics with %s technique. The composition reflects %s artistic traditions from the %s period.",
		record.Period, record.Medium, record.Nationality, year)
}

// FallbackCaption is used when the remote endpoint could not produce a caption
func FallbackCaption(record models.Record) string {
	record = record.WithDefaults()
	return fmt.Sprintf("This is an artwork titled '%s' by %s, created during the %s period. "+
		"The piece uses %s as its medium and reflects %s artistic traditions. "+
		"The artwork showcases the characteristic style and techniques of the %s movement, "+
		"demonstrating the artist's mastery of composition, color, and form.",
		record.Title, record.Artist, record.Period, record.Medium, record.Nationality, record.Period)
}

// MinimalCaption is the last-resort caption when processing a record fails outright
func MinimalCaption(record models.Record) string {
	record = record.WithDefaults()
	return fmt.Sprintf("This artwork by %s is titled '%s'.", record.Artist, record.Title)
}
