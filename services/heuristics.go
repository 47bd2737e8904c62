package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeuristicTags  = 5
	maxHeuristicTasks = 5
	minTokenLength    = 3
)

// stopWords are dropped before counting tag candidates.
var stopWords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true, "or": true,
	"to": true, "in": true, "on": true, "for": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true, "were": true,
	"are": true, "been": true, "with": true, "from": true, "into": true,
	"that": true, "this": true, "these": true, "those": true, "has": true,
	"have": true, "had": true, "his": true, "her": true, "its": true,
	"their": true, "our": true, "your": true, "you": true, "they": true,
	"them": true, "she": true, "him": true, "not": true, "but": true,
	"all": true, "any": true, "can": true, "will": true, "would": true,
	"should": true, "could": true, "just": true, "also": true, "about": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"how": true, "than": true, "then": true, "there": true, "here": true,
	"some": true, "more": true, "very": true, "out": true, "get": true,
	"got": true, "need": true, "needs": true, "does": true, "did": true,
	"done": true, "todo": true, "task": true, "http": true, "https": true,
	"www": true, "com": true,
}

var (
	boldSpanRe     = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	checkboxLineRe = regexp.MustCompile(`(?m)^\s*[-*]\s*\[ \]\s*(.+?)\s*$`)
	taskPrefixRe   = regexp.MustCompile(`(?mi)^\s*(?:TODO|TASK)\s*:\s*(.+?)\s*$`)
)

// Enrichment is the result of one enrichment run.
type Enrichment struct {
	Tags      []string `json:"tags"`
	Summary   *string  `json:"summary"`
	Tasks     []string `json:"tasks"`
	Sentiment string   `json:"sentiment"`
}

// HeuristicEnrichment derives tags, summary and tasks from content without a model.
func HeuristicEnrichment(content string, summaryBudget int) Enrichment {
	return Enrichment{
		Tags:      extractTags(content, maxHeuristicTags),
		Summary:   truncateSummary(content, summaryBudget),
		Tasks:     extractTasks(content, maxHeuristicTasks),
		Sentiment: "neutral",
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// extractTags returns the most frequent non stop-word tokens. Ties keep first appearance.
func extractTags(content string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokenize(content) {
		if utf8.RuneCountInString(tok) < minTokenLength || stopWords[tok] || isNumber(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// truncateSummary returns nil when content fits the budget.
func truncateSummary(content string, budget int) *string {
	content = strings.TrimSpace(content)
	if budget <= 0 || utf8.RuneCountInString(content) <= budget {
		return nil
	}
	runes := []rune(content)
	summary := strings.TrimSpace(string(runes[:budget])) + "..."
	return &summary
}

// extractTasks collects imperative phrases from bold spans, open checkboxes and
// TODO:/TASK: lines, deduplicated case-insensitively.
func extractTasks(content string, limit int) []string {
	var tasks []string
	seen := make(map[string]bool)
	add := func(matches [][]string) {
		for _, m := range matches {
			if len(tasks) >= limit {
				return
			}
			phrase := strings.TrimSpace(m[1])
			key := strings.ToLower(phrase)
			if phrase == "" || seen[key] {
				continue
			}
			seen[key] = true
			tasks = append(tasks, phrase)
		}
	}

	add(boldSpanRe.FindAllStringSubmatch(content, -1))
	add(checkboxLineRe.FindAllStringSubmatch(content, -1))
	add(taskPrefixRe.FindAllStringSubmatch(content, -1))
	return tasks
}
