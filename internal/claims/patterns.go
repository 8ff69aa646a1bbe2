package claims

import (
	"regexp"

	"banksentinel/internal/model"
)

// typePatterns drives extraction for one claim type. RequiresEntity types
// only produce a claim when a recognized entity is mentioned in the post.
type typePatterns struct {
	Patterns       []*regexp.Regexp
	RequiresEntity bool
}

// claimTypeOrder fixes iteration order so extraction is deterministic.
var claimTypeOrder = []model.ClaimType{
	model.ClaimNationalization,
	model.ClaimInvestigation,
	model.ClaimLiquidity,
	model.ClaimDelivery,
	model.ClaimFraud,
	model.ClaimInsider,
	model.ClaimPriceTarget,
}

var claimPatterns = map[model.ClaimType]typePatterns{
	model.ClaimNationalization: {
		RequiresEntity: true,
		Patterns: compile(
			`nationali[sz](?:e|ed|ing|ation)`,
			`government (?:seizure|takeover)`,
			`state takeover`,
			`taken over by (?:the )?(?:government|state|regulators)`,
		),
	},
	model.ClaimInvestigation: {
		RequiresEntity: true,
		Patterns: compile(
			`under investigation`,
			`being investigated`,
			`\bprobe[ds]?\b`,
			`subpoena`,
			`grand jury`,
			`regulators? (?:are )?looking into`,
		),
	},
	model.ClaimLiquidity: {
		Patterns: compile(
			`bank run`,
			`withdraw(?:al)?s? (?:halted|frozen|suspended|limited)`,
			`liquidity (?:crisis|crunch|problems?)`,
			`can'?t (?:get|withdraw|access) (?:my|their|your) (?:money|funds|cash)`,
			`deposits? frozen`,
		),
	},
	model.ClaimDelivery: {
		Patterns: compile(
			`delivery (?:default|failure|delays?)`,
			`failed to deliver`,
			`out of (?:stock|silver|gold)`,
			`no (?:physical|metal) available`,
			`premiums? (?:are )?(?:spiking|exploding|surging)`,
		),
	},
	model.ClaimFraud: {
		RequiresEntity: true,
		Patterns: compile(
			`fraud(?:ulent)?`,
			`ponzi`,
			`cooking the books`,
			`fake (?:accounts?|reserves)`,
			`rehypothecat`,
		),
	},
	model.ClaimInsider: {
		RequiresEntity: true,
		Patterns: compile(
			`insider (?:selling|trading|dumping)`,
			`executives? (?:are )?(?:dumping|selling|sold)`,
			`massive (?:insider )?sell-?off`,
		),
	},
	model.ClaimPriceTarget: {
		Patterns: compile(
			`\$\d+ (?:by|before|target)`,
			`price target`,
			`going to \$\d+`,
			`to the moon`,
		),
	},
}

var (
	documentMarkers = compileOne(`court (?:filing|document)|according to (?:the )?(?:filing|document|report)|official (?:filing|document|statement)|press release|\.pdf\b`)
	officialMarkers = compileOne(`\bfdic\b|\bocc\b|\bsec\b|federal reserve|comptroller|\.gov\b`)
	linkMarkers     = compileOne(`https?://`)

	absoluteMarkers     = compileOne(`\b(?:always|never|guaranteed|100%|certainly|definitely|inevitable)\b`)
	sensationalMarkers  = compileOne(`!{2,}|\b(?:shocking|bombshell|urgent|huge|massive collapse)\b|collapse (?:is )?imminent`)
	conspiracyMarkers   = compileOne(`they don'?t want you to know|cover-?up|mainstream media|wake up sheeple|\bcabal\b|false flag|\belites\b`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func compileOne(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}
