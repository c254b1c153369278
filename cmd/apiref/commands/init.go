package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/apiref/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`

	out io.Writer
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	w := i.out
	if w == nil {
		w = os.Stdout
	}
	return RunInit(w, root.Config, i.Force)
}

// RunInit writes a default configuration file to configPath.
func RunInit(w io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
