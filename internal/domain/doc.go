// Package domain holds the persistent entities of the content tool: projects
// with their targeting settings, research keywords, base articles, and
// community-tailored article revisions.
//
// Entities validate themselves; stores call Validate before writing.
package domain
