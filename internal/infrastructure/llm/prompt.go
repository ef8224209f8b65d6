// Package llm holds what the classifier backends share.
package llm

import "strings"

// Categories are the labels the prompt asks the model to choose from.
var Categories = []string{"Charitable", "Religious", "Foundation", "Political", "Other"}

const maxMissionSnippet = 4000

func CategoryPrompt(mission string) string {
	snippet := mission
	if len(snippet) > maxMissionSnippet {
		snippet = snippet[:maxMissionSnippet]
	}
	return "Which ONE of the following IRS 501(c) categories best describes this organization? " +
		"Respond with exactly one word - " + strings.Join(Categories, ", ") + ". " +
		"Mission: " + snippet
}
