// Package catalog loads the role roadmap templates that new roadmaps are
// generated from.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrTemplateNotFound = errors.New("roadmap template not found")

// Roles is the fixed list offered on the interests page.
var Roles = []string{
	"Frontend", "Backend", "DevOps", "Full_Stack", "AI_Engineer", "Data_Analyst", "AI_Data_Scientist",
	"Android", "iOS", "PostgreSQL", "Blockchain", "Software_Architect", "Cyber_Security", "UX_Design",
	"Game_Developer", "Technical_Writer", "MLOps", "Product_Manager", "SQL", "React", "Python",
	"JavaScript", "AWS", "Docker", "Git&Github", "Node.js", "Typescript", "Kubernetes", "Flutter", "DSA",
	"Linux", "Prompt_Engineering", "Terraform", "PHP", "Cloudflare",
}

type Step struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DurationDays int    `json:"duration_days"`
}

type Module struct {
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Template struct {
	Role     string    `json:"role"`
	Modules  []Module  `json:"modules"`
	Projects []Project `json:"projects"`
}

// Slug maps a role name to its template file stem: lower case, spaces to
// underscores, "&" to "and". Dashes are read as spaces.
func Slug(role string) string {
	s := strings.ToLower(strings.TrimSpace(role))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "&", "and")
}

// DisplayName title-cases a role with underscores and dashes as spaces.
func DisplayName(role string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(role))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// CanonicalRole returns the entry of Roles matching role by slug, or role
// itself when it is not a listed role.
func CanonicalRole(role string) string {
	if r, ok := lookup(role); ok {
		return r
	}
	return role
}

func lookup(role string) (string, bool) {
	slug := Slug(role)
	for _, r := range Roles {
		if Slug(r) == slug {
			return r, true
		}
	}
	return "", false
}

// Catalog reads templates from a directory of <slug>.json files.
type Catalog struct {
	dir string
}

func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) path(role string) string {
	return filepath.Join(c.dir, Slug(role)+".json")
}

// Has reports whether a template file exists for role. Only listed roles
// have templates.
func (c *Catalog) Has(role string) bool {
	r, ok := lookup(role)
	if !ok {
		return false
	}
	_, err := os.Stat(c.path(r))
	return err == nil
}

// Get loads the template for a listed role. Missing step ids get "step-<n>" so step
// codes stay unique within a roadmap, and durations default to one day.
func (c *Catalog) Get(role string) (*Template, error) {
	listed, ok := lookup(role)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, role)
	}
	data, err := os.ReadFile(c.path(listed))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, role)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", role, err)
	}

	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", role, err)
	}
	tpl.Role = listed

	n := 0
	for mi := range tpl.Modules {
		for si := range tpl.Modules[mi].Steps {
			n++
			step := &tpl.Modules[mi].Steps[si]
			if step.ID == "" {
				step.ID = fmt.Sprintf("step-%d", n)
			}
			if step.DurationDays <= 0 {
				step.DurationDays = 1
			}
		}
	}
	return &tpl, nil
}

// StepCount is the number of steps across all modules.
func (t *Template) StepCount() int {
	n := 0
	for _, m := range t.Modules {
		n += len(m.Steps)
	}
	return n
}
