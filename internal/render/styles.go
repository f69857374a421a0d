package render

import "github.com/charmbracelet/lipgloss"

var (
	pathColor       = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	positionColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	tokenColor      = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	suggestionColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	cleanColor      = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
)

// styles are bound to one lipgloss renderer so color detection follows the
// writer rather than stdout.
type styles struct {
	path       lipgloss.Style
	position   lipgloss.Style
	token      lipgloss.Style
	marker     lipgloss.Style
	suggestion lipgloss.Style
	clean      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		path:       r.NewStyle().Bold(true).Foreground(pathColor),
		position:   r.NewStyle().Foreground(positionColor),
		token:      r.NewStyle().Bold(true).Foreground(tokenColor),
		marker:     r.NewStyle().Foreground(tokenColor),
		suggestion: r.NewStyle().Italic(true).Foreground(suggestionColor),
		clean:      r.NewStyle().Foreground(cleanColor),
	}
}
