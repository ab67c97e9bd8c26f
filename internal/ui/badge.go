package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/templui/fliptrack/internal/model"
)

const badgeBase = "inline-flex items-center rounded-full px-2.5 py-0.5 text-xs font-medium bg-gray-100 text-gray-800"

var categoryClasses = map[string]string{
	model.CategoryProgress:  "bg-blue-100 text-blue-800",
	model.CategoryIssue:     "bg-red-100 text-red-800",
	model.CategoryBefore:    "bg-amber-100 text-amber-800",
	model.CategoryAfter:     "bg-green-100 text-green-800",
	model.CategoryMilestone: "bg-purple-100 text-purple-800",
}

var statusClasses = map[string]string{
	model.ProjectStatusPlanning: "bg-slate-100 text-slate-800",
	model.ProjectStatusDemo:     "bg-orange-100 text-orange-800",
	model.ProjectStatusSystems:  "bg-yellow-100 text-yellow-800",
	model.ProjectStatusFinishes: "bg-teal-100 text-teal-800",
	model.ProjectStatusOnMarket: "bg-indigo-100 text-indigo-800",
	model.ProjectStatusSold:     "bg-emerald-100 text-emerald-800",
}

// palette holds the 100 and 800 shades of each badge colour.
var palette = map[string][2]string{
	"gray":    {"#f3f4f6", "#1f2937"},
	"blue":    {"#dbeafe", "#1e40af"},
	"red":     {"#fee2e2", "#991b1b"},
	"amber":   {"#fef3c7", "#92400e"},
	"green":   {"#dcfce7", "#166534"},
	"purple":  {"#f3e8ff", "#6b21a8"},
	"slate":   {"#f1f5f9", "#1e293b"},
	"orange":  {"#ffedd5", "#9a3412"},
	"yellow":  {"#fef9c3", "#854d0e"},
	"teal":    {"#ccfbf1", "#115e59"},
	"indigo":  {"#e0e7ff", "#3730a3"},
	"emerald": {"#d1fae5", "#065f46"},
}

// badgeCSS defines the utility classes badges use, for pages rendered
// without the Tailwind stylesheet.
func badgeCSS() string {
	var b strings.Builder
	b.WriteString(`.inline-flex{display:inline-flex}.items-center{align-items:center}.rounded-full{border-radius:9999px}`)
	b.WriteString(`.px-2\.5{padding-left:.625rem;padding-right:.625rem}.py-0\.5{padding-top:.125rem;padding-bottom:.125rem}`)
	b.WriteString(`.text-xs{font-size:.75rem;line-height:1rem}.font-medium{font-weight:500}`)
	for _, name := range slices.Sorted(maps.Keys(palette)) {
		shades := palette[name]
		fmt.Fprintf(&b, ".bg-%s-100{background-color:%s}.text-%s-800{color:%s}", name, shades[0], name, shades[1])
	}
	return b.String()
}

// CategoryBadge returns the badge classes for an update category.
// Unknown categories keep the neutral base treatment.
func CategoryBadge(category string, extra ...string) string {
	return badge(categoryClasses[category], extra)
}

// StatusBadge returns the badge classes for a project status.
func StatusBadge(status string, extra ...string) string {
	return badge(statusClasses[status], extra)
}

func badge(variant string, extra []string) string {
	classes := append([]string{badgeBase, variant}, extra...)
	return twmerge.Merge(classes...)
}
