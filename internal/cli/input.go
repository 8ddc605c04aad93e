// Package cli handles cmd line input and ranked results for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/rankserve/internal/utils"
	"github.com/bastiangx/rankserve/pkg/config"
	"github.com/bastiangx/rankserve/pkg/controller"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/bastiangx/rankserve/pkg/provider"
	"github.com/bastiangx/rankserve/pkg/result"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	contentsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	defaultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// InputHandler runs one autocomplete session over stdin. Every line is a
// new keystroke in the same session, so matches carried over from the
// previous line show up marked as copied. Lines starting with ':' are commands.
type InputHandler struct {
	ctrl      *controller.Controller
	providers []provider.Provider
	page      match.PageClassification
	showDups  bool
	maxLen    int
	reader    io.Reader
	out       io.Writer
}

// NewInputHandler handles initialization of the InputHandler from cfg.
func NewInputHandler(cfg *config.Config, providers []provider.Provider, limit int) *InputHandler {
	opts := cfg.Options()
	if limit > 0 {
		opts.MaxMatches = limit
		opts.MaxZeroSuggestMatches = limit
	}
	page, ok := match.ParsePage(cfg.CLI.DefaultPage)
	if !ok {
		log.Warnf("Unknown default page %q, using other", cfg.CLI.DefaultPage)
	}
	return &InputHandler{
		ctrl:      controller.New(opts, cfg.SearchEngines(), controller.WithGroups(cfg.SuggestionGroups())),
		providers: providers,
		page:      page,
		showDups:  cfg.CLI.ShowDups,
		maxLen:    cfg.Server.MaxInputLength,
		reader:    os.Stdin,
		out:       os.Stdout,
	}
}

// Start begins the interface loop. It stops at EOF or on a read error.
func (h *InputHandler) Start() error {
	log.Print("rankserve CLI [BETA]")
	log.Print("type something and press Enter to rank it, empty line for on-focus (Ctrl+C to exit)")
	log.Print("commands: :page <name>  :clear  :dups")

	scanner := bufio.NewScanner(h.reader)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line[1:])
			continue
		}
		h.handleInput(line, false)
	}
}

func (h *InputHandler) handleCommand(cmd string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	switch name {
	case "page":
		page, ok := match.ParsePage(arg)
		if !ok {
			log.Errorf("Unknown page: %s", arg)
			return
		}
		h.page = page
		log.Infof("Page set to %s", page)
	case "clear":
		h.ctrl.Stop(true)
		log.Info("Session cleared")
	case "dups":
		h.showDups = !h.showDups
		log.Infof("Show duplicates: %v", h.showDups)
	default:
		log.Errorf("Unknown command: %s", name)
	}
}

// handleInput runs every provider for text as one keystroke and prints the result.
func (h *InputHandler) handleInput(text string, clear bool) {
	if err := utils.ValidateInput(text, h.maxLen, true); err != nil {
		log.Errorf("Invalid input: %v", err)
		return
	}
	in := match.Input{Text: text, Kind: match.ClassifyInput(text), Page: h.page}

	start := time.Now()
	ids := make([]match.ProviderID, len(h.providers))
	for i, p := range h.providers {
		ids[i] = p.ID()
	}
	h.ctrl.Start(in, clear, ids...)

	var (
		last    *controller.Update
		changed bool
	)
	for _, p := range h.providers {
		matches := p.Start(in)
		log.Debug("Provider answered", "provider", p.ID(), "matches", len(matches))
		if u, ok := h.ctrl.Update(controller.Batch{Provider: p.ID(), Matches: matches, Done: true}); ok {
			last = u
			changed = changed || u.DefaultChanged
		}
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for input '%s'", elapsed, text)

	if last == nil || last.Result.Empty() {
		log.Warnf("No matches for input: '%s'", text)
		return
	}
	h.print(last.Result, changed)
}

func (h *InputHandler) print(res *result.Result, defaultChanged bool) {
	header := fmt.Sprintf("%d matches", res.Size())
	if defaultChanged {
		header += " (default changed)"
	}
	fmt.Fprintln(h.out, dimStyle.Render(header))

	for i := range res.Size() {
		m := res.MatchAt(i)
		contents := contentsStyle.Render(utils.Truncate(m.Contents, 48))
		if i == 0 && m.AllowedToBeDefault {
			contents = defaultStyle.Render(utils.Truncate(m.Contents, 48))
		}
		flags := ""
		if m.FromPrevious {
			flags += " copied"
		}
		if m.InlineAutocompletion != "" {
			flags += " inline=" + m.InlineAutocompletion
		}
		fmt.Fprintf(h.out, "%2d. %-50s %-22s %8s%s\n",
			i+1, contents, m.Type, utils.FormatWithCommas(m.Relevance), dimStyle.Render(flags))
		if m.Description != "" {
			fmt.Fprintf(h.out, "    %s\n", dimStyle.Render(utils.Truncate(m.Description, 72)))
		}
		if h.showDups {
			for _, d := range m.Duplicates {
				fmt.Fprintf(h.out, "    = %s (%s, %s)\n", d.Destination, d.Provider, utils.FormatWithCommas(d.Relevance))
			}
		}
	}
}
