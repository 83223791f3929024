package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/grover/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// Template names in the catalog.
const (
	TitleOutlineTemplate      = "title_outline"
	ArticleContentTemplate    = "article_content"
	RefineTemplate            = "refine"
	FixFormatTemplate         = "fix_format"
	MetaTemplate              = "meta"
	CommunityRevisionTemplate = "community_revision"
	expandWordsTemplate       = "expand_words"
	expandKeywordsTemplate    = "expand_keywords"
	expandFieldsTemplate      = "expand_fields"
	expandRetryTemplate       = "expand_retry"
)

var requiredTemplates = []string{
	"brief",
	TitleOutlineTemplate,
	ArticleContentTemplate,
	RefineTemplate,
	FixFormatTemplate,
	MetaTemplate,
	CommunityRevisionTemplate,
	expandWordsTemplate,
	expandKeywordsTemplate,
	expandFieldsTemplate,
	expandRetryTemplate,
}

// ErrTemplateMissing is returned when a catalog lacks a required template.
var ErrTemplateMissing = errors.New("prompt template missing")

type catalogFile struct {
	Version   int               `yaml:"version"`
	Templates map[string]string `yaml:"templates"`
}

// Catalog holds parsed prompt templates.
type Catalog struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"keywordList": func(keywords []string) string {
		if len(keywords) == 0 {
			return "(none)"
		}
		return strings.Join(keywords, ", ")
	},
}

// Default parses the embedded catalog. It panics only if the embedded file is
// malformed, which the package tests rule out.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded catalog: %v", err))
	}
	return c
}

// Parse builds a Catalog from YAML source.
func Parse(src []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(src, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	root := template.New("prompts").Funcs(funcs).Option("missingkey=error")
	for _, name := range requiredTemplates {
		body, ok := file.Templates[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, name)
		}
		if _, err := root.New(name).Parse(body); err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
		}
	}
	return &Catalog{tmpl: root}, nil
}

func (c *Catalog) render(name string, data any) (string, error) {
	var b strings.Builder
	if err := c.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}

// ArticleData is the template input shared by article prompts.
type ArticleData struct {
	Project  *domain.Project
	Article  *domain.Article
	Keywords []string
}

// TitleOutline asks for a JSON object with article_title and article_outline.
func (c *Catalog) TitleOutline(data ArticleData) (string, error) {
	return c.render(TitleOutlineTemplate, data)
}

// ArticleContent asks for the full article body.
func (c *Catalog) ArticleContent(data ArticleData) (string, error) {
	return c.render(ArticleContentTemplate, data)
}

// Meta asks for a JSON object with meta_title and meta_description.
func (c *Catalog) Meta(data ArticleData) (string, error) {
	return c.render(MetaTemplate, data)
}

// Refine asks for content rewritten according to instructions.
func (c *Catalog) Refine(content, instructions string) (string, error) {
	return c.render(RefineTemplate, struct{ Content, Instructions string }{content, instructions})
}

// FixFormat asks for content with its markdown cleaned up.
func (c *Catalog) FixFormat(content string) (string, error) {
	return c.render(FixFormatTemplate, struct{ Content string }{content})
}

// CommunityRevisionData is the input of the community revision prompt.
type CommunityRevisionData struct {
	ArticleData
	CommunityDetails string
}

// CommunityRevision asks for the article tailored to one community.
func (c *Catalog) CommunityRevision(data CommunityRevisionData) (string, error) {
	return c.render(CommunityRevisionTemplate, data)
}
