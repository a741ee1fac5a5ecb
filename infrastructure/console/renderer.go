package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"reelnotes/domain/output"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	// StyleAuto picks a markdown theme from the terminal background
	StyleAuto = "auto"
	// StylePlain renders markdown without colors, for pipes and tests
	StylePlain = "notty"

	defaultWidth = 80
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	bannerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// Renderer implements output.Renderer with lipgloss panels and glamour markdown
type Renderer struct {
	style string
	width int
}

// RendererOption is a functional option for configuring Renderer
type RendererOption func(*Renderer)

// WithMarkdownStyle sets the glamour style name (auto, dark, light, notty, ...)
func WithMarkdownStyle(style string) RendererOption {
	return func(r *Renderer) {
		if style != "" {
			r.style = style
		}
	}
}

// WithWidth sets the wrap width of rendered markdown
func WithWidth(width int) RendererOption {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// NewRenderer creates a new console renderer
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		style: StyleAuto,
		width: defaultWidth,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// StyleFor returns StyleAuto for terminals and StylePlain for everything else
func StyleFor(f *os.File) string {
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return StylePlain
	}
	return StyleAuto
}

// Banner implements output.Renderer
func (r *Renderer) Banner(w io.Writer, message string) error {
	_, err := fmt.Fprintln(w, bannerStyle.Render(message))
	return err
}

// Result implements output.Renderer
func (r *Renderer) Result(w io.Writer, res output.Result) error {
	body := r.markdown(res.Text)
	title := titleStyle.Render(fmt.Sprintf("Fabric Output (%s)", res.Pattern))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, title, panelStyle.Render(body)))
	return err
}

// markdown renders text with glamour, falling back to the raw text
func (r *Renderer) markdown(text string) string {
	tr, err := glamour.NewTermRenderer(r.styleOption(), glamour.WithWordWrap(r.width))
	if err != nil {
		slog.Debug("markdown renderer unavailable", slog.String("error", err.Error()))
		return strings.TrimSpace(text)
	}

	out, err := tr.Render(text)
	if err != nil {
		slog.Debug("markdown render failed", slog.String("error", err.Error()))
		return strings.TrimSpace(text)
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) styleOption() glamour.TermRendererOption {
	if r.style == StyleAuto {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(r.style)
}

// Success formats a completion line
func Success(message string) string {
	return okStyle.Render(message)
}

// Failure formats a fatal error line
func Failure(message string) string {
	return errorStyle.Render(message)
}

// Muted formats secondary information such as file paths
func Muted(message string) string {
	return mutedStyle.Render(message)
}

// Ensure Renderer implements output.Renderer
var _ output.Renderer = (*Renderer)(nil)
