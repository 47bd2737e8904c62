package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	content := "Garden plans: tomatoes, basil and more tomatoes. The garden needs water; tomatoes love sun. Basil too."
	assert.Equal(t, []string{"tomatoes", "garden", "basil", "plans", "water"}, extractTags(content, 5))
}

func TestExtractTagsSkipsStopWordsAndShortTokens(t *testing.T) {
	assert.Empty(t, extractTags("it is to be or not to be, 42 of 42", 5))
}

func TestTruncateSummary(t *testing.T) {
	assert.Nil(t, truncateSummary("short note", 150))

	long := strings.Repeat("a", 160)
	summary := truncateSummary(long, 150)
	require.NotNil(t, summary)
	assert.Equal(t, strings.Repeat("a", 150)+"...", *summary)

	multibyte := strings.Repeat("é", 12)
	summary = truncateSummary(multibyte, 10)
	require.NotNil(t, summary)
	assert.Equal(t, strings.Repeat("é", 10)+"...", *summary)
}

func TestExtractTasks(t *testing.T) {
	content := `Weekend
**Call the plumber** before Friday and **call the plumber** again.
- [ ] renew passport
- [x] already done
* [ ] book flights
TODO: pay rent
task: water plants
TASK: one too many`

	assert.Equal(t, []string{
		"Call the plumber",
		"renew passport",
		"book flights",
		"pay rent",
		"water plants",
	}, extractTasks(content, 5))
}

func TestHeuristicEnrichment(t *testing.T) {
	e := HeuristicEnrichment("Remember **buy milk** and milk for the milk shake", 150)
	assert.Equal(t, "milk", e.Tags[0])
	assert.Nil(t, e.Summary)
	assert.Equal(t, []string{"buy milk"}, e.Tasks)
	assert.Equal(t, "neutral", e.Sentiment)
}
