package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/stages"
)

const upsellText = "Upgrade your plan for a higher search limit and priority processing."

// View renders the UI based on the current animation state.
func (m *Model) View() string {
	s := m.state
	var sb strings.Builder

	sb.WriteString(styles.title.Render(fmt.Sprintf("Searching for %q", m.query.Text)))
	sb.WriteString("\n")

	switch {
	case s.IsComplete:
		sb.WriteString(m.renderComplete())
	case s.IsCancelled:
		sb.WriteString(styles.warn.Render("Search cancelled.") + "\n")
	case s.IsAnimating:
		sb.WriteString(m.renderRun(animation.VisibleAffordances(s, m.ctrl.Cancellable())))
	}

	if m.announcement != "" {
		sb.WriteString("\n" + styles.announce.Render("» "+m.announcement) + "\n")
	}
	sb.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return sb.String()
}

func (m *Model) renderRun(aff animation.Affordances) string {
	if aff.ShowError {
		return m.renderError(aff)
	}

	var sb strings.Builder
	if aff.ShowProgress {
		pct := m.state.Progress()
		fmt.Fprintf(&sb, "%s %3.0f%%\n\n", m.bar.ViewAs(pct/100), pct)
	}
	if aff.ShowStages {
		sb.WriteString(m.renderStages())
	}
	if aff.RotatingMessage != "" {
		sb.WriteString("\n" + styles.muted.Render(aff.RotatingMessage) + "\n")
	}
	if aff.ShowSlowWarning {
		sb.WriteString("\n" + styles.warn.Render("! This is taking longer than usual.") + "\n")
	}
	if aff.ShowCancel {
		label := "Cancel"
		if aff.EnhancedCancel {
			label = "Cancel search"
		}
		sb.WriteString("\n" + m.renderButton(cancelElement, label, models.VariantDanger, aff.EnhancedCancel) + "\n")
	}
	return sb.String()
}

func (m *Model) renderStages() string {
	var sb strings.Builder
	catalog := stages.Catalog()
	for _, st := range catalog {
		status := m.state.Status(st.ID)
		var marker string
		line := st.Icon + " " + st.Title
		switch status {
		case models.StageCompleted:
			marker = styles.ok.Render("✓")
		case models.StageActive:
			marker = m.spin.View()
			line = styles.active.Render(line)
		case models.StageError:
			marker = styles.err.Render("✗")
		default:
			marker = styles.muted.Render("○")
			line = styles.muted.Render(line)
		}
		fmt.Fprintf(&sb, " %s %s\n", marker, line)

		if status != models.StageActive {
			continue
		}
		for i := range min(m.state.Revealed(st.ID), len(st.SubSteps)) {
			value, _ := m.state.Value(models.SubStepKey{Stage: st.ID, Index: i})
			sb.WriteString("     " + styles.muted.Render(stages.Render(st.SubSteps[i], value)) + "\n")
		}
	}
	return sb.String()
}

func (m *Model) renderError(aff animation.Affordances) string {
	e := m.state.Error
	var body strings.Builder
	body.WriteString(styles.err.Render("✗ " + e.UserMessage))
	if st, ok := stages.Find(stages.Catalog(), e.Stage); ok {
		body.WriteString("\n" + styles.muted.Render(fmt.Sprintf("Stopped at step %d: %s", st.ID, st.Title)))
	}

	buttons := make([]string, len(aff.Actions))
	for i, a := range aff.Actions {
		buttons[i] = m.renderButton(a.ID, a.Label, a.Variant, false)
	}

	out := styles.panel.Render(body.String()) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, buttons...) + "\n"
	if aff.ShowUpsell {
		out += styles.upsell.Render(upsellText) + "\n"
	}
	return out
}

func (m *Model) renderButton(id, label string, variant models.ActionVariant, prominent bool) string {
	style := styles.button
	if m.focus.Focused() == id {
		style = styles.focused
	}
	if variant == models.VariantDanger || prominent {
		style = style.Foreground(styles.danger.GetForeground())
	}
	return style.Render(label)
}

func (m *Model) renderComplete() string {
	var sb strings.Builder
	n := 0
	if m.result != nil {
		n = len(m.result.Matches)
	}
	sb.WriteString(styles.ok.Render(fmt.Sprintf("✓ Search complete: %s", pluralize(n, "match", "matches"))) + "\n")
	if m.result != nil {
		for i, match := range m.result.Matches {
			if i == 5 {
				fmt.Fprintf(&sb, "  … %d more\n", len(m.result.Matches)-i)
				break
			}
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, match.Title)
		}
	}
	return sb.String()
}

func (m *Model) helpKeys() []key.Binding {
	s := m.state
	switch {
	case s.Error != nil:
		return []key.Binding{m.keys.next, m.keys.choose, m.keys.cancel, m.keys.quit}
	case s.IsAnimating:
		if len(m.focusables()) > 0 {
			return []key.Binding{m.keys.next, m.keys.choose, m.keys.cancel, m.keys.quit}
		}
		return m.keys.ShortHelp()
	default:
		return []key.Binding{m.keys.again, m.keys.quit}
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// NavigationHint describes a navigation target chosen from an error panel.
func NavigationHint(target string) string {
	switch target {
	case recovery.TargetEditQuery:
		return "Edit your query and search again."
	case recovery.TargetNewSearch:
		return "Start a new search."
	case recovery.TargetUpgrade:
		return "Visit your account settings to upgrade your plan."
	case recovery.TargetReport:
		return "Thanks, please include the run id when reporting this problem."
	default:
		return ""
	}
}
