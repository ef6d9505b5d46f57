package matcher

import (
	"regexp"
	"sort"
	"strings"
)

var (
	yearRe      = regexp.MustCompile(`\b20\d{2}\b`)
	quarterRe   = regexp.MustCompile(`\bq[1-4]\b`)
	moneyRe     = regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?[kmbt]\b)?`)
	moneyWordRe = regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:trillion|billion|million|thousand)\b`)
	percentRe   = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)
)

// monthNames covers full and abbreviated month tokens.
var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}

// keyTerms is the curated domain vocabulary: tickers, institutions,
// politically salient names, and company names. This is a closed,
// hand-maintained list, not general NER; extending coverage means editing it.
var keyTerms = []string{
	// crypto
	"bitcoin", "btc", "ethereum", "eth", "solana", "sol", "dogecoin", "xrp", "crypto",
	// macro and institutions
	"fed", "fomc", "ecb", "boe", "sec", "opec", "nato", "imf", "gdp",
	"cpi", "inflation", "recession", "rate cut", "rate hike", "tariff",
	// politics
	"trump", "biden", "harris", "vance", "putin", "zelensky", "xi", "netanyahu",
	"election", "senate", "house", "congress", "supreme court", "impeachment",
	"democrat", "republican", "gop",
	// companies and people
	"tesla", "apple", "nvidia", "microsoft", "google", "amazon", "meta",
	"openai", "spacex", "musk", "powell", "buffett",
	// events
	"super bowl", "world cup", "olympics", "oscars", "eurovision",
}

// ExtractEntities runs the fixed battery of pattern recognizers over a title
// and returns the deduplicated set of lower-cased matched substrings. Years,
// quarters, months, and key terms are matched against the normalized title;
// currency and percentage literals are matched against the raw lower-cased
// title because normalization strips their symbols.
func ExtractEntities(title string) map[string]bool {
	entities := make(map[string]bool)
	norm := Normalize(title)
	raw := strings.ToLower(title)

	for _, m := range yearRe.FindAllString(norm, -1) {
		entities[m] = true
	}
	for _, m := range quarterRe.FindAllString(norm, -1) {
		entities[m] = true
	}

	padded := " " + norm + " "
	for _, month := range monthNames {
		if strings.Contains(padded, " "+month+" ") {
			entities[month] = true
		}
	}
	for _, term := range keyTerms {
		if strings.Contains(padded, " "+term+" ") {
			entities[term] = true
		}
	}

	for _, m := range moneyRe.FindAllString(raw, -1) {
		entities[strings.TrimSpace(m)] = true
	}
	for _, m := range moneyWordRe.FindAllString(raw, -1) {
		entities[strings.TrimSpace(m)] = true
	}
	for _, m := range percentRe.FindAllString(raw, -1) {
		entities[m] = true
	}

	return entities
}

// Years returns the distinct 4-digit year tokens found in the title.
func Years(title string) []string {
	seen := make(map[string]bool)
	var years []string
	for _, m := range yearRe.FindAllString(Normalize(title), -1) {
		if !seen[m] {
			seen[m] = true
			years = append(years, m)
		}
	}
	return years
}

// intersect returns the sorted intersection of two string sets.
func intersect(a, b map[string]bool) []string {
	var shared []string
	for k := range a {
		if b[k] {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	return shared
}
