// Package twin holds the digital-twin behavioral profiles for judges and
// opposing counsel. Profiles are compiled-in display and prompt data; the
// simulation runner folds the selected profiles into its prompts.
package twin

import (
	"fmt"
	"strings"

	"github.com/kanonhq/kanon/internal/simulation"
)

// JudgeCharacteristics scores judicial behavior on a 1-10 scale.
type JudgeCharacteristics struct {
	PleadingStrictness int `json:"pleadingStrictness"`
	PrecedentWeight    int `json:"precedentWeight"`
	PolicyReceptivity  int `json:"policyReceptivity"`
	PlaintiffFriendly  int `json:"plaintiffFriendly"`
}

// JudgeProfile is the digital twin of a presiding judge.
type JudgeProfile struct {
	Name             string               `json:"name"`
	Characteristics  JudgeCharacteristics `json:"characteristics"`
	EvidenceSnippets map[string][]string  `json:"evidenceSnippets"`
	Notes            string               `json:"notes"`
}

// OpposingProfile is the digital twin of the opposing counsel or firm.
type OpposingProfile struct {
	Name                string   `json:"name"`
	AggressivenessScore int      `json:"aggressivenessScore"`
	LikelyMoves         []string `json:"likelyMoves"`
	TypicalArguments    []string `json:"typicalArguments"`
	Weaknesses          []string `json:"weaknesses"`
}

// Catalog lists the available twin profiles.
type Catalog struct {
	Judges   []JudgeProfile    `json:"judges"`
	Opposing []OpposingProfile `json:"opposing"`
}

// Profiles returns the compiled-in catalog.
func Profiles() Catalog {
	return Catalog{Judges: judges, Opposing: opposing}
}

// JudgeByName returns the judge profile matching name (case-insensitive),
// or false when no such profile exists. An empty name matches nothing.
func JudgeByName(name string) (JudgeProfile, bool) {
	for _, j := range judges {
		if strings.EqualFold(j.Name, name) {
			return j, true
		}
	}
	return JudgeProfile{}, false
}

// OpposingByName returns the opposing-counsel profile matching name
// (case-insensitive), or false when no such profile exists.
func OpposingByName(name string) (OpposingProfile, bool) {
	for _, o := range opposing {
		if strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return OpposingProfile{}, false
}

// PromptBlock renders the profile as prompt text for the simulation runner.
func (j JudgeProfile) PromptBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Judge Profile (%s):\n", j.Name)
	fmt.Fprintf(&b, "- Pleading Strictness: %d/10\n", j.Characteristics.PleadingStrictness)
	fmt.Fprintf(&b, "- Precedent Weight: %d/10\n", j.Characteristics.PrecedentWeight)
	fmt.Fprintf(&b, "- Policy Receptivity: %d/10\n", j.Characteristics.PolicyReceptivity)
	fmt.Fprintf(&b, "- Plaintiff Friendly: %d/10\n", j.Characteristics.PlaintiffFriendly)
	if j.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", j.Notes)
	}
	return b.String()
}

// PromptBlock renders the profile as prompt text for the simulation runner.
func (o OpposingProfile) PromptBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Opposing Counsel Profile (%s):\n", o.Name)
	fmt.Fprintf(&b, "- Aggressiveness: %d/10\n", o.AggressivenessScore)
	if len(o.TypicalArguments) > 0 {
		fmt.Fprintf(&b, "- Typical Arguments: %s\n", strings.Join(o.TypicalArguments, ", "))
	}
	if len(o.LikelyMoves) > 0 {
		fmt.Fprintf(&b, "- Likely Moves: %s\n", strings.Join(o.LikelyMoves, ", "))
	}
	return b.String()
}

// PromptContext resolves the named judge and counsel into the prompt blocks
// the simulation runner expects. Unknown or empty names yield empty blocks;
// the simulation degrades to a profile-free prompt rather than failing.
func PromptContext(judgeName, opposingName string) simulation.PromptContext {
	var pc simulation.PromptContext
	if j, ok := JudgeByName(judgeName); ok {
		pc.JudgeProfile = j.PromptBlock()
	}
	if o, ok := OpposingByName(opposingName); ok {
		pc.OpposingProfile = o.PromptBlock()
	}
	return pc
}
