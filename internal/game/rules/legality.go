package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/deck"
)

// RuleID names a deck construction rule.
type RuleID string

// Deck construction rules, in evaluation order.
const (
	RuleLegendPresence           RuleID = "legend-presence"
	RuleBattlefieldCount         RuleID = "battlefield-count"
	RuleMainSize                 RuleID = "main-size"
	RuleColorSubset              RuleID = "color-subset"
	RuleChampionLegendTagOverlap RuleID = "champion-legend-tag-overlap"
	RuleCopyLimit                RuleID = "copy-limit"
	RuleChampionPresence         RuleID = "champion-presence"
	RuleSideDeckSize             RuleID = "side-deck-size"
	RuleSignatureTagMatch        RuleID = "signature-tag-match"
)

// maxListedViolators caps the card names listed in a single finding.
const maxListedViolators = 5

// Finding is the outcome of one rule.
type Finding struct {
	Rule   RuleID `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report is the outcome of a full validation run.
type Report struct {
	IsValid  bool      `json:"isValid"`
	Findings []Finding `json:"findings"`
}

// Failed returns the findings that did not pass, in rule order.
func (r Report) Failed() []Finding {
	failed := make([]Finding, 0)
	for _, f := range r.Findings {
		if !f.Passed {
			failed = append(failed, f)
		}
	}
	return failed
}

// Finding returns the finding for rule.
func (r Report) Finding(rule RuleID) (Finding, bool) {
	for _, f := range r.Findings {
		if f.Rule == rule {
			return f, true
		}
	}
	return Finding{}, false
}

// deckRule evaluates one rule against a resolved deck.
type deckRule struct {
	id    RuleID
	check func(v *validation) (bool, string)
}

// rulesInOrder is evaluated top to bottom; every rule always runs.
var rulesInOrder = []deckRule{
	{RuleLegendPresence, checkLegendPresence},
	{RuleBattlefieldCount, checkBattlefieldCount},
	{RuleMainSize, checkMainSize},
	{RuleColorSubset, checkColorSubset},
	{RuleChampionLegendTagOverlap, checkChampionLegendTags},
	{RuleCopyLimit, checkCopyLimit},
	{RuleChampionPresence, checkChampionPresence},
	{RuleSideDeckSize, checkSideDeckSize},
	{RuleSignatureTagMatch, checkSignatureTags},
}

// validation carries the deck and its resolved legend/champion.
type validation struct {
	cards  deck.Cards
	lookup catalog.Lookup

	legend   catalog.CardMetadata
	champion catalog.CardMetadata
}

// Validate checks a deck against every construction rule.
// It never short-circuits, so the caller sees all violations at once. An id
// the catalog does not know is treated as a card without colors or tags.
func Validate(cards deck.Cards, lookup catalog.Lookup) Report {
	v := &validation{cards: cards, lookup: lookup}
	if cards.HasLegend() {
		v.legend, _ = lookup.Card(cards.LegendCard)
	}
	if cards.HasChampion() {
		v.champion, _ = lookup.Card(cards.ChosenChampion)
	}

	report := Report{
		IsValid:  true,
		Findings: make([]Finding, 0, len(rulesInOrder)),
	}
	for _, rule := range rulesInOrder {
		passed, detail := rule.check(v)
		report.Findings = append(report.Findings, Finding{
			Rule:   rule.id,
			Passed: passed,
			Detail: detail,
		})
		report.IsValid = report.IsValid && passed
	}

	return report
}

func checkLegendPresence(v *validation) (bool, string) {
	if !v.cards.HasLegend() {
		return false, "no legend selected"
	}
	return true, ""
}

func checkBattlefieldCount(v *validation) (bool, string) {
	n := len(v.cards.BattlefieldCards())
	if n != deck.BattlefieldSize {
		return false, fmt.Sprintf("deck has %d battlefields, requires %d", n, deck.BattlefieldSize)
	}
	return true, ""
}

func checkMainSize(v *validation) (bool, string) {
	n := len(v.cards.MainCards())
	if v.cards.HasChampion() {
		n++
	}
	if n != deck.MainDeckSize {
		return false, fmt.Sprintf("main deck has %d cards including champion, requires %d", n, deck.MainDeckSize)
	}
	return true, ""
}

// checkColorSubset compares against the legend's colors. A missing or unknown
// legend has none, so every colored card is listed.
func checkColorSubset(v *validation) (bool, string) {
	allowed := make(map[string]bool, len(v.legend.Colors))
	for _, c := range v.legend.Colors {
		allowed[c] = true
	}

	seen := make(map[catalog.CardID]bool)
	violators := make([]string, 0)
	for _, id := range v.cards.PlayableCards() {
		if seen[id] {
			continue
		}
		meta, ok := v.lookup.Card(id)
		if !ok || len(meta.Colors) == 0 {
			continue
		}
		for _, c := range meta.Colors {
			if !allowed[c] {
				seen[id] = true
				violators = append(violators, displayName(id, meta))
				break
			}
		}
	}

	if len(violators) > 0 {
		return false, "cards outside legend colors: " + capList(violators)
	}
	return true, ""
}

func checkChampionLegendTags(v *validation) (bool, string) {
	switch {
	case !v.cards.HasLegend() && !v.cards.HasChampion():
		return false, "no legend and no champion selected"
	case !v.cards.HasLegend():
		return false, "no legend selected"
	case !v.cards.HasChampion():
		return false, "no champion selected"
	case len(v.legend.Tags) == 0:
		return false, "legend has no tags"
	case len(v.champion.Tags) == 0:
		return false, "champion has no tags"
	case !v.champion.SharesTag(v.legend):
		return false, fmt.Sprintf("champion tags [%s] share nothing with legend tags [%s]",
			strings.Join(v.champion.Tags, ", "), strings.Join(v.legend.Tags, ", "))
	}
	return true, ""
}

func checkCopyLimit(v *validation) (bool, string) {
	counts := make(map[catalog.CardID]int)
	for _, id := range v.cards.PlayableCards() {
		counts[id]++
	}

	over := make([]string, 0)
	for id, n := range counts {
		if n > deck.CopyLimit {
			over = append(over, fmt.Sprintf("%s x%d", id, n))
		}
	}
	if len(over) > 0 {
		sort.Strings(over)
		return false, fmt.Sprintf("more than %d copies: %s", deck.CopyLimit, capList(over))
	}
	return true, ""
}

func checkChampionPresence(v *validation) (bool, string) {
	if !v.cards.HasChampion() {
		return false, "no champion selected"
	}
	return true, ""
}

func checkSideDeckSize(v *validation) (bool, string) {
	n := len(v.cards.SideCards())
	if n != 0 && n != deck.SideDeckSize {
		return false, fmt.Sprintf("side deck has %d cards, requires 0 or %d", n, deck.SideDeckSize)
	}
	return true, ""
}

func checkSignatureTags(v *validation) (bool, string) {
	if !v.cards.HasLegend() {
		return true, ""
	}

	seen := make(map[catalog.CardID]bool)
	violators := make([]string, 0)
	for _, id := range v.cards.PlayableCards() {
		if seen[id] {
			continue
		}
		seen[id] = true
		meta, ok := v.lookup.Card(id)
		if !ok || !meta.IsSignature() {
			continue
		}
		if !meta.SharesTag(v.legend) {
			violators = append(violators, displayName(id, meta))
		}
	}

	if len(violators) > 0 {
		return false, "signature cards not matching legend tags: " + capList(violators)
	}
	return true, ""
}

func displayName(id catalog.CardID, meta catalog.CardMetadata) string {
	if meta.Name == "" {
		return string(id)
	}
	return meta.Name
}

func capList(items []string) string {
	if len(items) <= maxListedViolators {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:maxListedViolators], ", ") + ", …"
}
