// Package htmlclean sanitizes the rich-text HTML the course backend stores
// for course and exercise descriptions, and distills marketing bullet points
// out of it.
package htmlclean

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SupportLine is always appended as the last bullet point.
const SupportLine = "Поддержка сообщества https://t.me/seplitza_support"

const maxBulletPoints = 4

var (
	froalaRe     = regexp.MustCompile(`(?i)Powered by Froala Editor`)
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	closingPRe   = regexp.MustCompile(`(?i)</p>`)
	anyTagRe     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&laquo;", "«",
	"&raquo;", "»",
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// bulletKeywords score sentences for the "what you get" list; these are the
// stems of the words course authors actually use in descriptions.
var bulletKeywords = []string{
	"получ", "научи", "освои", "работа", "упражнен",
	"техник", "метод", "результат", "улучш", "избав",
}

// CleanDescription strips editor watermarks, decodes the common HTML entities
// and collapses runs of the same emoji. The markup itself is preserved.
func CleanDescription(html string) string {
	html = froalaRe.ReplaceAllString(html, "")
	html = entityReplacer.Replace(html)
	return dedupeEmojis(html)
}

// dedupeEmojis collapses two or more repeats of the same emoji into one.
// Backreferences are not available in RE2, so this walks the runes directly.
func dedupeEmojis(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		if isEmoji(r) && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isEmoji(r rune) bool {
	return r >= 0x1F300 && r <= 0x1F9FF
}

// ExtractBulletPoints distills up to four selling points from a course
// description: the entity-decoded, tag-stripped text is split into sentences,
// scored against bulletKeywords and the best ones picked. When the description
// yields fewer than two usable sentences, generic defaults based on the course
// duration are returned instead. The community support line always closes the
// list.
func ExtractBulletPoints(html string, courseDurationDays int) []string {
	points := extractSentences(html)
	if len(points) < 2 {
		points = []string{
			fmt.Sprintf("%d дней обучающих материалов", courseDurationDays),
			"Практические упражнения каждый день",
			"Доступ к материалам навсегда",
		}
	}
	return append(points, SupportLine)
}

func extractSentences(html string) []string {
	if html == "" {
		return nil
	}

	cleaned := froalaRe.ReplaceAllString(html, "")
	cleaned = entityReplacer.Replace(cleaned)

	// flatten the markup: breaks and paragraph ends become sentence breaks
	text := brRe.ReplaceAllString(cleaned, ". ")
	text = closingPRe.ReplaceAllString(text, ". ")
	text = anyTagRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	type scoredSentence struct {
		text  string
		score int
	}
	var sentences []scoredSentence
	for _, raw := range sentenceRe.Split(text, -1) {
		sentence := strings.TrimSpace(raw)
		if len([]rune(sentence)) <= 15 || len([]rune(sentence)) >= 200 {
			continue
		}
		sentences = append(sentences, scoredSentence{
			text:  sentence,
			score: scoreSentence(sentence),
		})
	}

	// stable sort keeps the original order among equally scored sentences
	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].score > sentences[j].score
	})
	if len(sentences) > maxBulletPoints {
		sentences = sentences[:maxBulletPoints]
	}

	points := make([]string, 0, len(sentences))
	for _, s := range sentences {
		points = append(points, s.text)
	}
	return points
}

func scoreSentence(sentence string) int {
	lower := strings.ToLower(sentence)
	score := 0
	for _, kw := range bulletKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}
