package noise

import "strings"

// KnownNoiseParams maps parameter names to their noise type
// Types: tracking, marketing, analytics, csrf, session
var KnownNoiseParams = map[string]string{
	"gclid":                      "tracking",
	"dclid":                      "tracking",
	"fbclid":                     "tracking",
	"msclkid":                    "tracking",
	"twclid":                     "tracking",
	"ttclid":                     "tracking",
	"yclid":                      "tracking",
	"mc_eid":                     "tracking",
	"igshid":                     "tracking",
	"_ga":                        "analytics",
	"_gl":                        "analytics",
	"_hsenc":                     "marketing",
	"_hsmi":                      "marketing",
	"mc_cid":                     "marketing",
	"mkt_tok":                    "marketing",
	"ref":                        "marketing",
	"csrf":                       "csrf",
	"csrf_token":                 "csrf",
	"csrfmiddlewaretoken":        "csrf",
	"_csrf":                      "csrf",
	"_token":                     "csrf",
	"authenticity_token":         "csrf",
	"__requestverificationtoken": "csrf",
	"__viewstate":                "session",
	"__viewstategenerator":       "session",
	"__eventvalidation":          "session",
	"jsessionid":                 "session",
	"phpsessid":                  "session",
}

// noisePrefixes are matched when no exact entry exists
var noisePrefixes = map[string]string{
	"utm_": "marketing",
	"pk_":  "analytics",
	"hsa_": "marketing",
}

// KnownNoiseHosts maps link host patterns to their category
// Types: analytics, tracking, ads, cdn, social, marketing, support
var KnownNoiseHosts = map[string]string{
	"google-analytics.com":  "analytics",
	"googletagmanager.com":  "analytics",
	"doubleclick.net":       "tracking",
	"facebook.com":          "social",
	"twitter.com":           "social",
	"x.com":                 "social",
	"linkedin.com":          "social",
	"googlesyndication.com": "ads",
	"googleadservices.com":  "ads",
	"hubspot.com":           "marketing",
	"mailchimp.com":         "marketing",
	"list-manage.com":       "marketing",
	"cdn.jsdelivr.net":      "cdn",
	"cdnjs.cloudflare.com":  "cdn",
	"unpkg.com":             "cdn",
	"zendesk.com":           "support",
	"intercom.io":           "support",
}

// DetectParamType returns the noise type for a parameter name, or empty string if not noise
func DetectParamType(name string) string {
	lower := strings.ToLower(name)
	if ptype, ok := KnownNoiseParams[lower]; ok {
		return ptype
	}
	for prefix, ptype := range noisePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ptype
		}
	}
	return ""
}

// IsNoiseParam returns true if the parameter name matches a known noise pattern
func IsNoiseParam(name string) bool {
	return DetectParamType(name) != ""
}

// IsCSRFParam returns true for anti-forgery token fields
func IsCSRFParam(name string) bool {
	return DetectParamType(name) == "csrf"
}

// DetectHostType returns the category of a link host, or empty string if unknown.
// A pattern matches the host itself or any subdomain of it.
func DetectHostType(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for pattern, htype := range KnownNoiseHosts {
		if host == pattern || strings.HasSuffix(host, "."+pattern) {
			return htype
		}
	}
	return ""
}
