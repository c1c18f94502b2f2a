package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/annel0/mmo-wire/internal/network"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	wiresync "github.com/annel0/mmo-wire/internal/sync"
	"github.com/annel0/mmo-wire/internal/world"
)

// demoCmd проигрывает короткую сессию: вход персонажа, изменения инвентаря,
// пакетный сброс и NPC, исчезнувший до отправки.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Play a scripted session and print every packet it sends",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			session := network.NewOutbound("demo", hexTransport(out), nil)
			mgr, err := wiresync.NewManager(wiresync.Config{Sink: session, FlushEvery: time.Hour})
			if err != nil {
				return err
			}
			defer mgr.Stop()

			player := world.NewPlayer(268480001, "Anneli", mgr.Accumulator())
			player.EnterWorld()
			fmt.Fprintln(out, "== UserInfo")
			if err := session.Send(player.InfoPacket()); err != nil {
				return err
			}

			sword := world.NewItem(268437001, 2369, 1)
			potions := world.NewItem(268437002, 1061, 20)
			for _, it := range []*world.Item{sword, potions} {
				if err := player.Inventory.Add(it); err != nil {
					return err
				}
			}
			if err := player.Inventory.Update(sword.ObjectID(), func(it *world.Item) {
				it.Augment(&item.Augmentation{Option1: 100, Option2: 200})
				it.SetVisualID(55)
			}); err != nil {
				return err
			}
			if err := player.Inventory.Update(potions.ObjectID(), func(it *world.Item) { it.SetCount(19) }); err != nil {
				return err
			}
			fmt.Fprintf(out, "== InventoryUpdate (%d pending)\n", mgr.Accumulator().Len())
			mgr.Flush()

			wolf := world.NewNpc(1000042, 20120, "Wolf")
			wolf.Spawn(-71338, 258271, -3104, 32768)
			wolf.SetHP(2444, 2444)
			fmt.Fprintln(out, "== NpcInfo")
			if err := session.Send(wolf.InfoPacket(true)); err != nil {
				return err
			}

			packet := wolf.InfoPacket(false)
			wolf.Despawn()
			fmt.Fprintln(out, "== NpcInfo after despawn (dropped)")
			return session.Send(packet)
		},
	}
}
