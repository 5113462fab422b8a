// internal/github/bots.go
package github

import "strings"

var knownBots = map[string]struct{}{
	"dependabot[bot]":          {},
	"renovate[bot]":            {},
	"pyup-bot":                 {},
	"snyk-bot":                 {},
	"greenkeeper[bot]":         {},
	"github-actions[bot]":      {},
	"github-learning-lab[bot]": {},
	"backport[bot]":            {},
	"stale[bot]":               {},
	"labeler[bot]":             {},
	"release-drafter[bot]":     {},
	"travis-ci[bot]":           {},
	"circleci[bot]":            {},
	"netlify[bot]":             {},
	"vercel[bot]":              {},
	"heroku[bot]":              {},
	"jenkins[bot]":             {},
	"drone-io[bot]":            {},
	"bitrise[bot]":             {},
	"eslint[bot]":              {},
	"stylelint[bot]":           {},
	"prettier[bot]":            {},
	"lgtm-com[bot]":            {},
	"codecov[bot]":             {},
	"coveralls[bot]":           {},
	"tox-bot":                  {},
	"reviewdog[bot]":           {},
	"danger[bot]":              {},
	"reviewflow[bot]":          {},
	"pullapprove[bot]":         {},
	"lintly[bot]":              {},
	"mergeable[bot]":           {},
	"code-review-bot":          {},
	"probot[bot]":              {},
	"allcontributors[bot]":     {},
	"crowdin[bot]":             {},
	"readthedocs[bot]":         {},
	"gitter-badger[bot]":       {},
	"imgbot[bot]":              {},
	"korbit-ai":                {},
	"dosu":                     {},
	"codiumai":                 {},
	"gpt-engineer-bot":         {},
	"sweep":                    {},
	"aiderbot":                 {},
	"refact-ai":                {},
	"openai-bot":               {},
	"anthropic-bot":            {},
	"nabla":                    {},
}

// isBot reports whether login belongs to a known automation account.
func isBot(login string) bool {
	login = strings.ToLower(login)
	if strings.HasSuffix(login, "[bot]") {
		return true
	}
	_, ok := knownBots[login]
	return ok
}
