package captioning

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

// Word bounds every template caption satisfies
const (
	MinWords      = 100
	MaxWords      = 200
	TruncateWords = 180
)

// phrase is lowercased text with its word set precomputed
type phrase struct {
	text  string
	words map[string]bool
}

func newPhrase(raw string) phrase {
	text := strings.ToLower(strings.TrimSpace(raw))
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		words[w] = true
	}
	return phrase{text: text, words: words}
}

// hasWord reports whether any keyword appears as a whole word, allowing a plural "s"
func (t phrase) hasWord(keywords ...string) bool {
	for _, kw := range keywords {
		if t.words[kw] || t.words[kw+"s"] {
			return true
		}
	}
	return false
}

// contains reports whether any phrase appears as a substring
func (t phrase) contains(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(t.text, p) {
			return true
		}
	}
	return false
}

// rule is one entry of a first-match-wins classifier
type rule struct {
	match func(phrase) bool
	label string
}

func firstMatch(rules []rule, t phrase, fallback string) string {
	for _, r := range rules {
		if r.match(t) {
			return r.label
		}
	}
	return fallback
}

func words(keywords ...string) func(phrase) bool {
	return func(t phrase) bool { return t.hasWord(keywords...) }
}

func isPortrait(t phrase) bool {
	return t.hasWord("portrait") || t.contains("self-portrait", "self portrait")
}

const defaultGenre = "artwork"

var genreRules = []rule{
	{isPortrait, "portrait"},
	{words("landscape", "view"), "landscape"},
	{func(t phrase) bool { return t.contains("still life") || t.hasWord("still", "life", "flower", "fruit") }, "still life"},
	{words("interior", "room", "chamber"), "interior scene"},
	{words("battle", "war", "combat"), "battle scene"},
	{words("hunt", "hunting", "hunter"), "hunting scene"},
	{words("feast", "banquet", "meal"), "feast scene"},
}

const defaultMedium = "a painting"

var mediumRules = []rule{
	{words("oil", "oils"), "an oil painting"},
	{func(t phrase) bool { return t.contains("watercolor", "watercolour") }, "a watercolor painting"},
	{words("tempera"), "a tempera painting"},
	{words("fresco"), "a fresco"},
	{words("drawing", "charcoal", "pencil"), "a drawing"},
}

// Genre derives a coarse genre label from an artwork title
func Genre(rawTitle string) string {
	return firstMatch(genreRules, newPhrase(rawTitle), defaultGenre)
}

// MediumPhrase derives the closing medium phrase from a medium description
func MediumPhrase(medium string) string {
	return firstMatch(mediumRules, newPhrase(medium), defaultMedium)
}

var subjectRules = []rule{
	{func(t phrase) bool { return isPortrait(t) && t.hasWord("woman", "women", "lady", "madonna") }, "A figure depicts a woman looking at us."},
	{func(t phrase) bool { return isPortrait(t) && t.hasWord("man", "men", "gentleman") }, "A figure depicts a man looking at us."},
	{isPortrait, "A figure depicts a person looking at us."},
	{words("landscape", "view"), "The scene shows a landscape view with various natural elements."},
	{func(t phrase) bool { return t.contains("still life") || (t.hasWord("still") && t.hasWord("life")) }, "The image shows various objects arranged together on a surface."},
	{words("woman", "women", "lady"), "The image shows a woman."},
	{words("man", "men", "gentleman"), "The image shows a man."},
	{words("figure"), "The image shows one or more figures."},
}

func subjectSentence(t phrase) string {
	return firstMatch(subjectRules, t, "")
}

// Optional sentences, each added when its keywords appear in the title
var detailRules = []rule{
	{words("blue"), "Blue colors are prominent."},
	{words("green"), "Green colors are visible."},
}

const backgroundSentence = "In the background, there are additional elements and details."

var sceneRules = []rule{
	{words("door", "window", "opening"), "A door or opening is visible in the background."},
	{words("tree", "forest", "wood"), "Trees are visible in the scene."},
	{words("building", "house", "church", "castle", "palace"), "Buildings are present in the background."},
	{words("animal", "horse", "dog", "cat", "bird"), "Animals are present in the scene."},
	{words("table", "chair", "furniture"), "Furniture elements are visible."},
}

const (
	lightingSentence = "The lighting creates areas of brightness and shadow, giving depth to the scene."
	colorSentence    = "Various colors are present throughout the composition, creating visual interest."
)

// elaboration is spliced in before the closing sentence of short captions.
// It is long enough that the shortest possible caption still reaches MinWords.
const elaboration = "The composition shows careful attention to arrangement, with elements positioned to create visual balance. " +
	"Details are visible throughout, contributing to the overall scene. " +
	"The image contains multiple visual elements arranged in a cohesive manner, with foreground and background elements creating depth. " +
	"Shapes and forms lead the eye from one area of the picture to the next. " +
	"Edges, surfaces and the spaces between objects are rendered with care, so that the picture reads clearly at a glance."

func allMatches(rules []rule, t phrase) []string {
	var out []string
	for _, r := range rules {
		if r.match(t) {
			out = append(out, r.label)
		}
	}
	return out
}

// ClosingSentence names the medium and genre; it ends every template caption
func ClosingSentence(record models.Record) string {
	return fmt.Sprintf("It is %s, %s.", MediumPhrase(record.Medium), withArticle(Genre(record.Title)))
}

func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

// Template builds a deterministic caption from the record's title and medium.
// The result always has between MinWords and MaxWords words and always ends
// with ClosingSentence.
func Template(record models.Record) string {
	record = record.WithDefaults()
	t := newPhrase(record.Title)

	var parts []string

	subject := subjectSentence(t)
	if subject == "" {
		cleaned := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(t.text)), " ")
		subject = fmt.Sprintf("The image shows %s.", cleaned)
	}
	parts = append(parts, subject)

	switch {
	case t.hasWord("red"):
		parts = append(parts, "The figure is wearing a red dress.")
	case t.hasWord("dress"):
		parts = append(parts, "The figure is wearing a dress.")
	}
	parts = append(parts, allMatches(detailRules, t)...)

	parts = append(parts, backgroundSentence)
	parts = append(parts, allMatches(sceneRules, t)...)
	parts = append(parts, lightingSentence, colorSentence)

	return fitLength(strings.Join(parts, " "), ClosingSentence(record))
}

// fitLength joins body and closing sentence, padding or truncating the body
// so the total stays within [MinWords, MaxWords]. The closing sentence is
// never truncated.
func fitLength(body, closing string) string {
	bodyWords := strings.Fields(body)
	total := len(bodyWords) + len(strings.Fields(closing))

	switch {
	case total < MinWords:
		return body + " " + elaboration + " " + closing
	case total > MaxWords && len(bodyWords) > TruncateWords:
		return strings.Join(bodyWords[:TruncateWords], " ") + " " + closing
	default:
		return body + " " + closing
	}
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}
