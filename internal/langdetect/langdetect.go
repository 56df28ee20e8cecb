package langdetect

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// MinTextLength is the shortest text, in runes, that is worth detecting.
const MinTextLength = 20

// languages maps the detectable languages to the codes the API expects.
var languages = map[lingua.Language]string{
	lingua.German:     "de",
	lingua.English:    "en",
	lingua.Spanish:    "es",
	lingua.French:     "fr",
	lingua.Italian:    "it",
	lingua.Portuguese: "pt",
	lingua.Russian:    "ru",
}

// Detector detects the language of a text.
// The underlying models are loaded on first use.
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
	minDist  float64
}

// New returns a Detector. minRelativeDistance in [0, 0.99] makes detection
// more conservative; 0 accepts the most likely language.
func New(minRelativeDistance float64) *Detector {
	return &Detector{minDist: minRelativeDistance}
}

func (d *Detector) load() {
	d.once.Do(func() {
		langs := make([]lingua.Language, 0, len(languages))
		for l := range languages {
			langs = append(langs, l)
		}
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			WithMinimumRelativeDistance(d.minDist).
			Build()
	})
}

// Detect returns the API language code for text and whether detection
// succeeded. Short or blank texts are not detected.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", false
	}

	d.load()
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code, ok := languages[lang]
	return code, ok
}

// Codes returns the language codes Detect can return.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for _, c := range languages {
		codes = append(codes, c)
	}
	return codes
}
