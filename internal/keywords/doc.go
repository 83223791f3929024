// Package keywords researches SEO keywords through the SEMrush analytics API.
//
// SEMrush answers with semicolon-separated text whose header row uses either
// the long column names ("Keyword", "Search Volume") or the export codes
// ("Ph", "Nq"). Parse maps both onto Result.
package keywords
