package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/network"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

var opcodeNames = map[packets.Opcode]string{
	packets.OpcodeNpcInfo:         "NpcInfo",
	packets.OpcodeItemList:        "ItemList",
	packets.OpcodeInventoryUpdate: "InventoryUpdate",
	packets.OpcodeUserInfo:        "UserInfo",
	packets.OpcodeExtended:        "Extended",
}

func replayCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "replay <capture.wcap>",
		Short: "List packets recorded by relay --capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, frames, err := network.ReadCaptureFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s: %d packets\n", session, len(frames))
			for i, f := range frames {
				name := "?"
				if len(f.Data) > 0 {
					if n, ok := opcodeNames[packets.Opcode(f.Data[0])]; ok {
						name = n
					}
				}
				fmt.Fprintf(out, "#%d %s %s %d bytes\n", i+1, f.At.Format("15:04:05.000"), name, len(f.Data))
				if dump {
					fmt.Fprint(out, hex.Dump(f.Data))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dump, "dump", "d", false, "print a hex dump of every packet")
	return cmd
}
