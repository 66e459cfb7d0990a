// Package setup provides the first-run terminal wizard that writes the
// ledger's yaml configuration.
package setup

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/assetbook/config"
	"github.com/vadiminshakov/assetbook/internal/entity"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		admin       string
		baseURI     string
		uriMode     string
		walDir      string
		listenAddr  string
		withGenesis bool
		confirm     bool
	)

	// defaults
	uriMode = "global"
	walDir = "./wal/events"
	listenAddr = ":8080"
	baseURI = "https://example.com/assets/{id}.json"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("ASSETBOOK CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your asset ledger.\n"))

	fmt.Println(stepStyle.Render("STEP 1: ADMINISTRATION"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Admin account (hex address)").
				Description("Initial holder of the admin role").
				Validate(validateAddress).
				Value(&admin),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: METADATA"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base metadata URI").
				Value(&baseURI),
			huh.NewSelect[string]().
				Title("URI resolution mode").
				Options(
					huh.NewOption("Global reference always wins", "global"),
					huh.NewOption("Per-asset metadata overrides", "per-asset"),
				).
				Value(&uriMode),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 3: RUNTIME"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Event log directory").
				Value(&walDir),
			huh.NewInput().
				Title("HTTP listen address").
				Value(&listenAddr),
			huh.NewConfirm().
				Title("Add a genesis asset?").
				Value(&withGenesis),
		),
	).Run()
	if err != nil {
		return err
	}

	cfgTmp := config.FileConfig{
		Admin:      admin,
		BaseURI:    baseURI,
		URIMode:    uriMode,
		WALDir:     walDir,
		ListenAddr: listenAddr,
	}

	if withGenesis {
		entry, err := genesisForm()
		if err != nil {
			return err
		}
		cfgTmp.Genesis = append(cfgTmp.Genesis, entry)
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ASSETBOOK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Admin: %s\nBase URI: %s\nURI mode: %s\nEvent log: %s\nListen: %s\nGenesis assets: %d\n",
		admin, baseURI, uriMode, walDir, listenAddr, len(cfgTmp.Genesis),
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("Saved " + filename))
	return nil
}

func genesisForm() (config.GenesisEntry, error) {
	var entry config.GenesisEntry

	fmt.Println(stepStyle.Render("STEP 4: GENESIS ASSET"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Metadata reference").
				Value(&entry.Metadata),
			huh.NewInput().
				Title("Recipient (hex address)").
				Validate(validateAddress).
				Value(&entry.Recipient),
			huh.NewInput().
				Title("Initial amount").
				Validate(validateAmount).
				Value(&entry.Amount),
		),
	).Run()
	return entry, err
}

func validateAddress(s string) error {
	if !common.IsHexAddress(s) {
		return fmt.Errorf("not a valid hex address")
	}
	return nil
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if !entity.ValidAmount(d) {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}
