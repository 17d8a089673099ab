// Package present renders simulation reports as localized messages.
package present

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Underwriter/internal/authority"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Messages are the human-readable lines for one report.
type Messages struct {
	Language  string `json:"language"`
	Score     string `json:"score"`
	DSR       string `json:"dsr"`
	Authority string `json:"authority"`
	Verdict   string `json:"verdict"`
	Risk      string `json:"risk"`
	Notice    string `json:"notice,omitempty"`
}

// Presenter renders reports using its own message catalog.
type Presenter struct {
	catalog *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// New loads the embedded catalogs. English is the fallback language.
func New() (*Presenter, error) {
	return load(localeFS)
}

func load(fsys fs.FS) (*Presenter, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	sort.Strings(paths)

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var f localeFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		tag, err := language.Parse(f.Locale)
		if err != nil {
			return nil, fmt.Errorf("%s: locale %q: %w", path, f.Locale, err)
		}
		for key, msg := range f.Messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("%s: key %q: %w", path, key, err)
			}
		}
		if tag != language.English {
			tags = append(tags, tag)
		}
	}

	return &Presenter{catalog: b, matcher: language.NewMatcher(tags), tags: tags}, nil
}

// Supported lists the languages with a catalog, fallback first.
func (p *Presenter) Supported() []language.Tag {
	return append([]language.Tag(nil), p.tags...)
}

// Match picks the best supported language for an Accept-Language value or
// a plain tag. Empty or unparseable input yields English.
func (p *Presenter) Match(pref string) language.Tag {
	pref = strings.TrimSpace(pref)
	if pref == "" {
		return language.English
	}
	prefs, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(prefs) == 0 {
		return language.English
	}
	_, idx, _ := p.matcher.Match(prefs...)
	return p.tags[idx]
}

// Render produces the localized messages for a report.
func (p *Presenter) Render(r simulation.Report, tag language.Tag) Messages {
	pr := message.NewPrinter(tag, message.Catalog(p.catalog))

	m := Messages{
		Language: tag.String(),
		Score:    pr.Sprintf("score.summary", r.Score.TotalScore, r.Score.Grade),
		Risk:     pr.Sprintf("risk." + string(r.RiskNote)),
	}

	monthly := r.Current.MonthlyPayment.Round(0).IntPart()
	if r.Current.IncomeUndefined {
		m.DSR = pr.Sprintf("dsr.undefined", monthly)
	} else {
		m.DSR = pr.Sprintf("dsr.summary", monthly, r.Current.Ratio*100, r.Stressed.AnnualRate*100, r.Stressed.Ratio*100)
	}

	level := pr.Sprintf("authority." + r.Decision.Level.String())
	if len(r.Decision.Reasons) > 0 {
		reasons := make([]string, len(r.Decision.Reasons))
		for i, reason := range r.Decision.Reasons {
			reasons[i] = pr.Sprintf("reason." + string(reason))
		}
		level = pr.Sprintf("authority.reasons", level, strings.Join(reasons, ", "))
	}
	m.Authority = level

	m.Verdict = p.verdict(pr, r.Verdict)
	if !r.Verdict.RoleRecognized {
		m.Notice = pr.Sprintf("verdict.unrecognized_role", r.Verdict.CallerInput)
	}
	return m
}

func (p *Presenter) verdict(pr *message.Printer, v authority.Verdict) string {
	caller := pr.Sprintf("role." + string(v.CallerRole))
	switch v.Outcome {
	case authority.OutcomeWithinAuthority:
		return pr.Sprintf("verdict.within_authority", caller)
	case authority.OutcomeInsufficientAuthority:
		return pr.Sprintf("verdict.insufficient_authority", caller, pr.Sprintf("role."+string(v.RequiredRole)))
	default:
		return pr.Sprintf("verdict.rejected_by_policy")
	}
}
