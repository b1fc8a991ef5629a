package bottles

import (
	"errors"
	"io"
	"math"

	"github.com/bnema/driftbottle/internal/application"
	"github.com/bnema/driftbottle/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// listing is the sea as the viewer sees it: the bottles in selector order and
// the totals shown above them.
type listing struct {
	candidates []application.Candidate
	// claimable counts bottles the viewer did not throw.
	claimable int
	// escrowed is the value held by all listed bottles, saturating at the
	// largest uint64.
	escrowed uint64
}

func summarize(candidates []application.Candidate, self domain.Address) listing {
	l := listing{candidates: candidates}
	for _, candidate := range candidates {
		if self.IsZero() || candidate.Bottle.Sender != self {
			l.claimable++
		}

		if candidate.Bottle.Asset > math.MaxUint64-l.escrowed {
			l.escrowed = math.MaxUint64
		} else {
			l.escrowed += candidate.Bottle.Asset
		}
	}

	return l
}

type listingMsg listing

type model struct {
	candidates []application.Candidate
	opts       RenderOptions
	styles     styles
	output     string
}

func (m model) Init() tea.Cmd {
	candidates, self := m.candidates, m.opts.Self
	return func() tea.Msg {
		return listingMsg(summarize(candidates, self))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l, ok := msg.(listingMsg); ok {
		m.output = renderView(listing(l), m.opts, m.styles)
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	return m.output
}

// Render lays out the drifting bottles, oldest first as given.
func Render(candidates []application.Candidate, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		model{candidates: candidates, opts: opts, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
