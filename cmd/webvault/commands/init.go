package commands

import (
	"fmt"

	"github.com/solvang/webvault/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.WriteStarter(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote starter configuration to %s\n", root.Config)
	fmt.Println("Edit the vault path, then run 'webvault export'.")
	return nil
}
