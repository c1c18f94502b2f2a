package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/localization"
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

type despawned struct{}

func (despawned) IsSpawned() bool { return false }

func itemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "item <fixture.yaml>",
		Short: "Encode a single item record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s item.Snapshot
			if err := loadFixture(args[0], &s); err != nil {
				return err
			}
			return printItem(cmd.OutOrStdout(), &s)
		},
	}
}

func inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <fixture.yaml>",
		Short: "Encode an InventoryUpdate batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f inventoryFixture
			if err := loadFixture(args[0], &f); err != nil {
				return err
			}
			changes, err := f.changes()
			if err != nil {
				return err
			}
			return printPacket(cmd.OutOrStdout(), packets.NewInventoryUpdate(changes))
		},
	}
}

func npcCmd(a *app) *cobra.Command {
	var (
		lang  string
		stale bool
		spawn bool
	)
	cmd := &cobra.Command{
		Use:   "npc <fixture.yaml>",
		Short: "Encode an NpcInfo packet, optionally localized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v packets.NpcView
			if err := loadFixture(args[0], &v); err != nil {
				return err
			}

			var subject packets.Presence
			if stale {
				subject = despawned{}
			}
			p := packets.NewNpcInfo(subject, v, spawn)

			if dir := a.cfg.Protocol.GetLocalizationDir(); dir != "" {
				store := localization.NewStore()
				if err := store.LoadDir(dir); err != nil {
					return err
				}
				if lang == "" {
					lang = a.cfg.Protocol.GetDefaultLanguage()
				}
				p.Localize(store, lang)
			}
			return printPacket(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "client language (default: protocol.default_language)")
	cmd.Flags().BoolVar(&stale, "stale", false, "treat the NPC as already despawned")
	cmd.Flags().BoolVar(&spawn, "spawn-animation", false, "set the spawn animation flag")
	return cmd
}

func userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <fixture.yaml>",
		Short: "Encode a UserInfo packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v packets.UserView
			if err := loadFixture(args[0], &v); err != nil {
				return err
			}
			return printPacket(cmd.OutOrStdout(), packets.NewUserInfo(nil, v))
		},
	}
}

func printItem(out io.Writer, s *item.Snapshot) error {
	p := item.Plan(s)
	if err := p.Err(); err != nil {
		return err
	}
	w := wire.NewWriter()
	item.WritePlanned(w, s, p)

	fmt.Fprintf(out, "item %d (%d bytes)\n", s.ObjectID, w.Len())
	fmt.Fprintf(out, "  mask %s: %s\n", hex.EncodeToString(p.Mask()), componentNames(p.Set()))
	fmt.Fprint(out, hex.Dump(w.Bytes()))
	return nil
}

func printPacket(out io.Writer, p packets.ServerPacket) error {
	data, err := packets.Encode(p)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		fmt.Fprintf(out, "%s: subject is gone, nothing to send\n", p.Name())
		return nil
	}

	fmt.Fprintf(out, "%s (%d bytes)\n", p.Name(), len(data))
	if mp, ok := p.(packets.MaskedPacket); ok {
		printPlan(out, mp.Plan())
	}
	fmt.Fprint(out, hex.Dump(data))
	return nil
}

func printPlan(out io.Writer, p *codec.Plan) {
	fmt.Fprintf(out, "  mask %s: %s\n", hex.EncodeToString(p.Mask()), componentNames(p.Set()))
	l := p.Layout()
	for i := 0; i < l.Blocks(); i++ {
		fmt.Fprintf(out, "  block %s: %d bytes\n", l.Block(i).Name, p.BlockLength(i))
	}
}

func componentNames(s *mask.Set) string {
	var names []string
	s.Each(func(c mask.ComponentType) {
		names = append(names, c.Name)
	})
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
