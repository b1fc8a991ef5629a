package bottles

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/driftbottle/internal/application"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const previewWidth = 48

type RenderOptions struct {
	Now time.Time
	// Self marks bottles the viewer threw and therefore cannot retrieve.
	Self domain.Address
}

func renderView(l listing, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("bottles: %d", len(l.candidates))
	if !opts.Self.IsZero() {
		header += fmt.Sprintf("  claimable: %d", l.claimable)
	}
	if l.escrowed > 0 {
		header += "  escrowed: " + formatAmount(l.escrowed)
	}

	lines := []string{
		s.title.Render("Drifting Bottles"),
		s.header.Render(header),
	}

	if len(l.candidates) == 0 {
		lines = append(lines, s.empty.Render("There are no drifting bottles."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, candidate := range l.candidates {
		lines = append(lines, s.section.Render(renderBottle(candidate, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBottle(candidate application.Candidate, opts RenderOptions, s styles) string {
	b := candidate.Bottle

	title := s.bottle.Render(fmt.Sprintf("#%d", b.ID))
	if !opts.Self.IsZero() && b.Sender == opts.Self {
		title += " " + s.own.Render("(yours)")
	}

	ageStyle := lipgloss.NewStyle().Foreground(ageColor(b.Timestamp, opts.Now))
	meta := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render("from "+b.Sender.Short()),
		" ",
		ageStyle.Render(formatAge(b.Timestamp, opts.Now)),
	)
	if b.Asset > 0 {
		meta += " " + s.amount.Render(formatCoins(b.Coins(), b.Asset%domain.UnitsPerCoin))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		meta,
		lipgloss.JoinHorizontal(lipgloss.Top, renderFillBar(len(b.Message), domain.MaxMessageSize, 12, s), " ", s.message.Render(preview(b.Message))),
	)
}

// RenderClaim formats a retrieved bottle for the terminal.
func RenderClaim(result application.ClaimResult) string {
	s := newStyles()

	lines := []string{
		s.title.Render(fmt.Sprintf("You retrieved bottle #%d from %s", result.Bottle.ID, result.Bottle.Sender.Short())),
		s.message.Render(result.Bottle.Message),
	}
	if result.Amount > 0 {
		lines = append(lines, s.amount.Render("It held "+formatAmount(result.Amount)))
	}
	lines = append(lines, s.header.Render("signature "+result.Receipt.Signature))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func RenderWallets(wallets []domain.Wallet, current domain.WalletName) string {
	s := newStyles()

	lines := []string{
		s.title.Render("Wallets"),
		s.header.Render(fmt.Sprintf("wallets: %d", len(wallets))),
	}
	if len(wallets) == 0 {
		lines = append(lines, s.empty.Render("No wallets. Create one with `bottle wallet create <name>`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, wallet := range wallets {
		marker := "  "
		name := s.detail.Render(string(wallet.Name))
		if wallet.Name == current {
			marker = "* "
			name = s.bottle.Render(string(wallet.Name))
		}
		lines = append(lines, marker+name+" "+s.header.Render(wallet.Address.String()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderFillBar(used, capacity, width int, s styles) string {
	if width <= 0 || capacity <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(used) / float64(capacity)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func preview(message string) string {
	flat := strings.Join(strings.Fields(message), " ")
	runes := []rune(flat)
	if len(runes) <= previewWidth {
		return flat
	}

	return string(runes[:previewWidth-3]) + "..."
}

func formatAmount(units uint64) string {
	return formatCoins(units/domain.UnitsPerCoin, units%domain.UnitsPerCoin)
}

// formatCoins prints whole coins plus frac smallest units without trailing
// zeros.
func formatCoins(whole, frac uint64) string {
	if frac == 0 {
		suffix := "coins"
		if whole == 1 {
			suffix = "coin"
		}
		return fmt.Sprintf("%d %s", whole, suffix)
	}

	digits := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d.%s coins", whole, digits)
}

func formatAge(timestamp int64, now time.Time) string {
	thrown := time.Unix(timestamp, 0)
	if now.IsZero() {
		return "thrown " + thrown.UTC().Format(time.RFC3339)
	}

	age := now.Sub(thrown)
	switch {
	case age < time.Minute:
		return "thrown just now"
	case age < time.Hour:
		return fmt.Sprintf("thrown %dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("thrown %dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("thrown %dd ago", int(age.Hours()/24))
	}
}

// ageColor brightens from grey to white as a bottle approaches a week adrift.
func ageColor(timestamp int64, now time.Time) lipgloss.Color {
	if now.IsZero() {
		return lipgloss.Color("255")
	}

	week := (7 * 24 * time.Hour).Seconds()
	normalized := now.Sub(time.Unix(timestamp, 0)).Seconds() / week
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
