// Package analysis implements the heuristic entity pipeline: fingerprint
// generation, entity-specific matching, and regex entity extraction. All
// functions are pure and deterministic; persistence and logging live in the
// service layer.
package analysis

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// organizationSuffixes mark a display name as a business rather than a person.
var organizationSuffixes = []string{
	"inc", "llc", "ltd", "limited", "corp", "corporation",
	"company", "co", "group", "foundation", "association",
}

// negativeKeywords are reputationally charged terms whose co-occurrence with
// a name token upgrades a weak mention to a contextual match.
var negativeKeywords = []string{
	"fraud", "scam", "warrant", "arrest", "lawsuit", "controversy",
	"investigation", "allegations", "misconduct", "criminal",
}

// businessKeywords are generic role/commerce terms used by the contextual
// matching layer.
var businessKeywords = []string{
	"ceo", "director", "founder", "owner", "business", "company",
}

// GenerateFingerprint deterministically derives the candidate pattern bundle
// for an entity display name. An empty name yields a near-empty fingerprint.
// The lowercased name itself is always the first exact phrase.
func GenerateFingerprint(entityName string) *models.EntityFingerprint {
	name := strings.TrimSpace(entityName)
	fp := &models.EntityFingerprint{
		EntityName:       name,
		NegativeKeywords: append([]string(nil), negativeKeywords...),
		BusinessContexts: append([]string(nil), businessKeywords...),
	}
	if name == "" {
		return fp
	}

	lower := strings.ToLower(name)
	parts := strings.Fields(lower)
	first := parts[0]
	last := parts[len(parts)-1]

	fp.ExactPhrases = []string{
		lower,
		`"` + lower + `"`,
		`'` + lower + `'`,
	}

	collapsed := strings.ReplaceAll(lower, " ", "")
	fp.FuzzyVariations = appendUnique(fp.FuzzyVariations, collapsed)

	if len(parts) > 1 {
		if isOrganizationName(parts) {
			// Singular/plural brand variants: "acme solution" should also
			// match "acme solutions" and vice versa.
			for _, variant := range []string{inflection.Plural(last), inflection.Singular(last)} {
				if variant != last && variant != "" {
					alt := strings.Join(append(append([]string(nil), parts[:len(parts)-1]...), variant), " ")
					fp.AliasVariations = appendUnique(fp.AliasVariations, alt)
				}
			}
		} else {
			fp.AliasVariations = appendUnique(fp.AliasVariations,
				first+" "+last[:1]+".",
				first[:1]+". "+last,
				"mr. "+last,
				"mr "+last,
			)
			fp.FuzzyVariations = appendUnique(fp.FuzzyVariations, first+last)
			fp.SocialHandles = appendUnique(fp.SocialHandles,
				"@"+first+last,
				"@"+first+"_"+last,
			)
		}
	}

	fp.SocialHandles = appendUnique(fp.SocialHandles, "@"+collapsed)

	return fp
}

// MergeAliases folds operator-supplied aliases (from a monitored client
// entity) into a generated fingerprint as additional alias variations.
func MergeAliases(fp *models.EntityFingerprint, aliases []string) {
	for _, alias := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if strings.HasPrefix(alias, "@") {
			fp.SocialHandles = appendUnique(fp.SocialHandles, alias)
			continue
		}
		fp.AliasVariations = appendUnique(fp.AliasVariations, alias)
	}
}

func isOrganizationName(parts []string) bool {
	last := strings.TrimSuffix(parts[len(parts)-1], ".")
	for _, suffix := range organizationSuffixes {
		if last == suffix {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
