package aggregator

import (
	"regexp"
	"strings"

	"github.com/chanforge/chanforge/internal/document"
)

// Rating categories, derived from how the entry's plugin is delivered
const (
	CategoryAPI     = "api"
	CategoryCSP     = "csp"
	CategoryJS      = "js"
	CategoryPython  = "python"
	CategoryUnknown = "unknown"
)

// qualityKeywords mark well-known collection providers whose entries are
// consistently maintained. Matching any of them in the name or api is worth
// a significant bonus.
var qualityKeywords = []string{
	"量子", "非凡", "索尼", "无尽", "金鹰", "速播", "樱花",
	"豆瓣", "lziapi", "ffzyapi", "suoniapi", "wujinapi",
	"jyzyapi", "subocaiji", "apiyhzy", "dbzy",
}

// cloudKeywords mark cloud-drive backed entries. These need personal drive
// accounts to play anything, so they are penalized out of general-purpose
// builds unless explicitly allowed.
var cloudKeywords = []string{
	"网盘", "分享", "share", "pan", "disk", "drive",
	"阿里", "ali", "aliyun", "alishare",
	"夸克", "quark",
	"115", "123",
	"迅雷", "thunder",
	"uc", "ucshare",
	"pikpak",
	"samba",
	"玩偶", "wogg", "wobg",
	"蜡笔", "labi",
	"木偶", "mogg",
	"土豆", "tudou",
	"小米", "xiaomi",
	"表哥", "biaoge",
	"老哥", "laoge",
	"tg", "telegram",
	"alist",
	"webdav",
	"云盘", "yunpan",
	"资源分享", "pushshare",
	"书籍", "ebook",
}

// cloudAPIPatterns catch cloud-drive plugin classes whose names don't carry
// any of the keywords
var cloudAPIPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)csp_.*Share`),
	regexp.MustCompile(`(?i)csp_.*Pan`),
	regexp.MustCompile(`(?i)csp_Wogg`),
	regexp.MustCompile(`(?i)csp_Wobg`),
	regexp.MustCompile(`(?i)csp_Moli`),
	regexp.MustCompile(`(?i)csp_TGYunPan`),
	regexp.MustCompile(`(?i)csp_AliShare`),
	regexp.MustCompile(`(?i)csp_QuarkShare`),
	regexp.MustCompile(`(?i)csp_ThunderShare`),
	regexp.MustCompile(`(?i)csp_P115Share`),
	regexp.MustCompile(`(?i)csp_UCShare`),
	regexp.MustCompile(`(?i)csp_SambaShare`),
	regexp.MustCompile(`(?i)csp_PikPakShare`),
	regexp.MustCompile(`(?i)csp_PushShare`),
}

// Score weights
const (
	cloudPenalty     = -100
	apiTypeBonus     = 50
	qualityBonus     = 30
	onlineAPIBonus   = 20
	cspBonus         = 20
	scriptBonus      = 10
	searchableBonus  = 10
	quickSearchBonus = 10
)

// Rating is the quality assessment for one site entry
type Rating struct {
	// Score is the accumulated quality score; higher is better
	Score int `json:"score"`

	// Reasons lists the score contributions, for reports
	Reasons []string `json:"reasons"`

	// Category groups the entry by plugin delivery mechanism
	Category string `json:"category"`
}

// RateSite scores one site entry. The score prefers stable collection APIs
// and well-known providers, and penalizes cloud-drive entries unless
// allowCloud is set.
func RateSite(site *document.SiteEntry, allowCloud bool) Rating {
	r := Rating{Category: CategoryUnknown}

	name := site.Name
	api := site.API

	// Cloud-drive filter first; a penalized entry can never recover enough
	// score to survive the default cutoff
	if !allowCloud {
		lowerName := strings.ToLower(name)
		lowerAPI := strings.ToLower(api)
		for _, kw := range cloudKeywords {
			if strings.Contains(lowerName, strings.ToLower(kw)) || strings.Contains(lowerAPI, strings.ToLower(kw)) {
				r.Score += cloudPenalty
				r.Reasons = append(r.Reasons, "cloud-drive resource ("+kw+")")
				break
			}
		}

		if r.Score >= 0 {
			for _, pattern := range cloudAPIPatterns {
				if pattern.MatchString(api) {
					r.Score += cloudPenalty
					r.Reasons = append(r.Reasons, "cloud-drive plugin ("+pattern.String()+")")
					break
				}
			}
		}
	}

	// Plugin delivery mechanism: collection APIs are the most stable
	switch {
	case site.Type == document.SiteTypeCMS:
		r.Score += apiTypeBonus
		r.Reasons = append(r.Reasons, "collection API (stable)")
		r.Category = CategoryAPI
	case strings.HasPrefix(api, "csp_"):
		r.Score += cspBonus
		r.Reasons = append(r.Reasons, "CSP plugin")
		r.Category = CategoryCSP
	case strings.Contains(api, ".js"):
		r.Score += scriptBonus
		r.Reasons = append(r.Reasons, "JS plugin")
		r.Category = CategoryJS
	case strings.Contains(api, ".py"):
		r.Score += scriptBonus
		r.Reasons = append(r.Reasons, "Python plugin")
		r.Category = CategoryPython
	}

	// Well-known provider bonus
	for _, kw := range qualityKeywords {
		if strings.Contains(name, kw) || strings.Contains(api, kw) {
			r.Score += qualityBonus
			r.Reasons = append(r.Reasons, "well-known provider ("+kw+")")
			break
		}
	}

	// Capability bonuses
	if site.Searchable != 0 {
		r.Score += searchableBonus
		r.Reasons = append(r.Reasons, "searchable")
	}
	if site.QuickSearch != 0 {
		r.Score += quickSearchBonus
		r.Reasons = append(r.Reasons, "quick search")
	}

	// Online endpoints beat bundled ones
	if strings.HasPrefix(api, "http") {
		r.Score += onlineAPIBonus
		r.Reasons = append(r.Reasons, "online API")
	}

	return r
}
