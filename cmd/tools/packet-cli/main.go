// packet-cli кодирует пакеты из YAML-описаний и печатает их hex-дамп,
// а также транслирует события ItemChanged из шины в пакеты InventoryUpdate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/config"
	"github.com/annel0/mmo-wire/internal/logging"
)

var components = []string{"protocol", "network", "sync", "eventbus"}

type app struct {
	configPath string
	cfg        *config.Config
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	logging.SetLogDir(cfg.Logging.GetDir())
	level := logging.ParseLevel(cfg.Logging.GetConsoleLevel())
	for _, c := range components {
		logging.GetComponentLogger(c).SetLevels(level, logging.DEBUG)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "packet-cli",
		Short: "Encode outbound game packets and inspect their bytes",
		Long: `packet-cli builds server packets from YAML fixtures and prints
their exact wire bytes. The relay command turns ItemChanged events
from the event bus into batched InventoryUpdate packets.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config (default: $GAME_WIRE_CONFIG)")

	root.AddCommand(
		itemCmd(),
		inventoryCmd(),
		npcCmd(a),
		userCmd(),
		relayCmd(a),
		publishCmd(a),
		localeCmd(a),
		replayCmd(),
		demoCmd(),
	)
	return root
}

func main() {
	err := newRootCmd().Execute()
	_ = logging.GetLoggerManager().CloseAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
