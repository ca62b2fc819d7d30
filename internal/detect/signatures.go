package detect

import "regexp"

// Signature pairs a feature name with its detection pattern. The table is
// ordered: adding or removing entries never changes matching semantics for
// the others.
type Signature struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultSignatures returns the built-in detection table. All patterns are
// case-insensitive and evaluated against single lines only.
func DefaultSignatures() []Signature {
	return []Signature{
		// CSS features
		{"backdrop-filter", regexp.MustCompile(`(?i)backdrop-filter\s*:`)},
		{"scroll-snap", regexp.MustCompile(`(?i)scroll-snap-(?:type|align|stop)\s*:`)},
		{":has()", regexp.MustCompile(`(?i):has\s*\(`)},
		{"container-queries", regexp.MustCompile(`(?i)@container\s+`)},
		{"subgrid", regexp.MustCompile(`(?i)(?:grid-template-(?:columns|rows)|grid)\s*:\s*[^;]*subgrid`)},
		{"view-transitions", regexp.MustCompile(`(?i)view-transition-name\s*:`)},
		{"@layer", regexp.MustCompile(`(?i)@layer\s+`)},
		{"color-mix()", regexp.MustCompile(`(?i)color-mix\s*\(`)},
		{"color()", regexp.MustCompile(`(?i)color\s*\(\s*(?:display-p3|rec2020|a98-rgb)`)},
		{":is()", regexp.MustCompile(`(?i):is\s*\(`)},
		{":where()", regexp.MustCompile(`(?i):where\s*\(`)},
		{"aspect-ratio", regexp.MustCompile(`(?i)aspect-ratio\s*:`)},
		{"gap", regexp.MustCompile(`(?i)(?:^|\s)gap\s*:`)},

		// JavaScript APIs
		{"MutationObserver", regexp.MustCompile(`(?i)new\s+MutationObserver`)},
		{"IntersectionObserver", regexp.MustCompile(`(?i)new\s+IntersectionObserver`)},
		{"ResizeObserver", regexp.MustCompile(`(?i)new\s+ResizeObserver`)},
		{"PerformanceObserver", regexp.MustCompile(`(?i)new\s+PerformanceObserver`)},
		{"document.startViewTransition", regexp.MustCompile(`(?i)document\.startViewTransition`)},
		{"navigator.share", regexp.MustCompile(`(?i)navigator\.share\s*\(`)},
		{"navigator.clipboard", regexp.MustCompile(`(?i)navigator\.clipboard`)},
		{"WebGL2", regexp.MustCompile(`(?i)getContext\s*\(\s*['"]webgl2['"]`)},
		{"Web Animations API", regexp.MustCompile(`(?i)element\.animate\s*\(`)},
		{"Intersection Observer v2", regexp.MustCompile(`(?i)IntersectionObserver.*isVisible`)},

		// Modern HTML
		{"dialog", regexp.MustCompile(`(?i)<dialog[\s>]`)},
		{"details", regexp.MustCompile(`(?i)<details[\s>]`)},
		{"popover", regexp.MustCompile(`(?i)popover\s*=`)},

		// Deprecated and legacy, kept for tech-debt detection
		{"AppCache", regexp.MustCompile(`(?i)<html[^>]*manifest\s*=`)},
		{"document.write", regexp.MustCompile(`(?i)document\.write\s*\(`)},
		{"synchronous XHR", regexp.MustCompile(`(?i)XMLHttpRequest.*async\s*:\s*false`)},
	}
}
